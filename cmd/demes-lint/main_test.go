package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempYAML(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestRun_ValidModelSucceeds(t *testing.T) {
	path := writeTempYAML(t, `
time_units: generations
demes:
  - name: a
    epochs:
      - start_size: 100
`)
	outPath := filepath.Join(t.TempDir(), "out.yaml")
	code := run([]string{"-o", outPath, path})
	assert.Equal(t, 0, code)

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(got), "time_units: generations")
}

func TestRun_InvalidModelFails(t *testing.T) {
	path := writeTempYAML(t, `
time_units: generations
demes: []
`)
	code := run([]string{"-q", path})
	assert.Equal(t, 1, code)
}

func TestRun_MissingArgReturnsUsageError(t *testing.T) {
	code := run(nil)
	assert.Equal(t, 2, code)
}
