package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Atomic is an output file that only appears at its final path on Commit.
type Atomic struct {
	*os.File
	path string
	done bool
}

// Create opens a temporary file next to path. Parent directories are created
// as needed. Callers must finish with Commit or Abort; Abort after Commit is a
// no-op, so `defer f.Abort()` is safe.
func Create(path string) (*Atomic, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &Atomic{File: tmp, path: path}, nil
}

// Path returns the final destination.
func (a *Atomic) Path() string { return a.path }

// Commit syncs and closes the temp file, then renames it over the destination.
func (a *Atomic) Commit() error {
	if a.done {
		return errors.New("file: already finished")
	}
	a.done = true
	tmp := a.File.Name()

	err := a.File.Sync()
	if cerr := a.File.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp, 0o644)
	}
	if err == nil {
		err = os.Rename(tmp, a.path)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit %s: %w", a.path, err)
	}
	return nil
}

// Abort discards the temp file.
func (a *Atomic) Abort() {
	if a.done {
		return
	}
	a.done = true
	_ = a.File.Close()
	_ = os.Remove(a.File.Name())
}

// WriteFile writes data to path atomically.
func WriteFile(path string, data []byte) error {
	f, err := Create(path)
	if err != nil {
		return err
	}
	defer f.Abort()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Commit()
}
