package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_CommitPublishes(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "nested", "out.sql")

	f, err := Create(dst)
	require.NoError(t, err)
	assert.Equal(t, dst, f.Path())

	_, err = f.WriteString("BEGIN;\nCOMMIT;\n")
	require.NoError(t, err)

	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr), "destination must not exist before Commit")

	require.NoError(t, f.Commit())
	f.Abort() // no-op after Commit

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "BEGIN;\nCOMMIT;\n", string(got))

	entries, err := os.ReadDir(filepath.Dir(dst))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")

	assert.Error(t, f.Commit(), "second Commit must fail")
}

func TestCreate_AbortLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(dst, []byte("old"), 0o644))

	f, err := Create(dst)
	require.NoError(t, err)
	_, err = f.WriteString("partial")
	require.NoError(t, err)
	f.Abort()

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "old", string(got), "Abort must not touch the destination")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFile(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "chunk.sql")
	require.NoError(t, WriteFile(dst, []byte("x")))
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "x", string(got))
}
