// Package file reads and writes the tools' local files.
//
// Inputs are opened through Local, which hints sequential access to the
// kernel. Outputs go through Create, which writes to a temporary sibling and
// renames on Commit so a failed run never leaves a half-written file behind.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local is a filesystem data source.
type Local struct{ path string }

// NewLocal returns a Local bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Name returns the path as given to NewLocal.
func (l *Local) Name() string { return l.path }

// Open returns the file for reading. A canceled ctx short-circuits before the
// filesystem is touched. Errors wrap the os error, so errors.Is(err,
// os.ErrNotExist) works for a missing input.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	adviseSequential(f)
	return f, nil
}

// ReadAll opens path and returns its full contents.
func ReadAll(ctx context.Context, path string) ([]byte, error) {
	rc, err := NewLocal(path).Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return b, nil
}
