package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestFormatter_WritesScript(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("NUTRITION_CONFIG", "")

	csv := "name,category,calories,protein_g\n" +
		"Apple,Fruits,52,0.3\n" +
		",Fruits,10,1\n" +
		"Banana,Fruits,89,1.1\n"
	require.NoError(t, os.WriteFile("in.csv", []byte(csv), 0o644))

	stdout, _, err := execute(t, "in.csv", "out.sql", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Total rows read: 3")
	assert.Contains(t, stdout, "Rows inserted: 2")
	assert.Contains(t, stdout, "Rows skipped: 1")
	assert.Contains(t, stdout, "Batches created: 2")

	sql, err := os.ReadFile(filepath.Join(dir, "out.sql"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(sql), "INSERT INTO simple_ingredients"))
	assert.True(t, strings.HasSuffix(string(sql), "COMMIT;\n"))
}

func TestFormatter_DefaultOutput(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("NUTRITION_CONFIG", "")
	require.NoError(t, os.WriteFile("in.csv", []byte("name,category\nSalt,Spices\n"), 0o644))

	_, _, err := execute(t, "in.csv")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "ingredients_insert.sql"))
}

func TestFormatter_MissingInput(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NUTRITION_CONFIG", "")

	_, stderr, err := execute(t, "missing.csv", "out.sql")
	require.Error(t, err)
	assert.Contains(t, stderr, "Error:")
	assert.NoFileExists(t, "out.sql")
}

func TestFormatter_UsageErrors(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, args := range [][]string{
		{},
		{"in.csv", "out.sql", "ten"},
		{"in.csv", "out.sql", "0"},
		{"a", "b", "1", "extra"},
	} {
		_, _, err := execute(t, args...)
		assert.Error(t, err, "%q", args)
	}
}
