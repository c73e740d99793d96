package simplelogger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autodoc.log")
	t.Setenv(EnvLogFile, path)

	logger, closeFn := New(Options{})
	logger.Info("hello", "who", "world")
	logger.Debug("details", "n", 123)
	require.NoError(t, closeFn())

	logger, closeFn = New(Options{})
	logger.Info("again")
	require.NoError(t, closeFn())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, "msg=hello who=world")
	assert.Contains(t, out, "msg=details n=123")
	assert.Contains(t, out, "msg=again")
}

func TestNew_NoOpWhenUnset(t *testing.T) {
	t.Setenv(EnvLogFile, "")
	logger, closeFn := New(Options{})
	logger.Info("should not panic")
	assert.NoError(t, closeFn())
	assert.False(t, logger.Enabled(t.Context(), 12))
}

func TestNew_SkipsDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvLogFile, dir)

	logger, closeFn := New(Options{})
	logger.Info("ignored")
	require.NoError(t, closeFn())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestNew_VerboseAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autodoc.log")
	t.Setenv(EnvLogFile, path)

	var stderr bytes.Buffer
	logger, closeFn := New(Options{Verbose: true, Stderr: &stderr})
	logger.With("run", "r1").Debug("both")
	require.NoError(t, closeFn())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "msg=both run=r1")
	assert.Contains(t, stderr.String(), "msg=both run=r1")
}
