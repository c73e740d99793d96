package gocodetesting

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// CursorMarker marks the cursor position in a fixture passed to SplitCursor.
const CursorMarker = "<|>"

// Dedent removes the common leading indentation from each non-blank line in s. Spaces and tabs both count as indentation; the smallest indent among non-blank lines
// is removed from all non-blank lines. Blank-only lines do not affect the indent; interior blank lines are preserved, and leading/trailing blank lines are trimmed.
// The result has no trailing spaces or tabs and always ends with a single '\n'.
func Dedent(s string) string {
	s = strings.Trim(s, "\n") // drop leading/trailing blank lines
	lines := strings.Split(s, "\n")

	min := -1 // smallest indent seen so far
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" { // If the line is only whitespace, consider it fully blank
			lines[i] = ""
			continue
		}
		indent := len(line) - len(trimmed)
		if min == -1 || indent < min {
			min = indent
		}
	}

	if min > 0 { // nothing to do if min == 0 or no non‑blank lines
		for i, line := range lines {
			if len(line) >= min {
				lines[i] = line[min:]
			}
		}
	}
	return strings.TrimRight(strings.Join(lines, "\n"), " \t\n") + "\n"
}

// SplitCursor removes the first CursorMarker from s and returns the remaining text and the byte offset the marker was at. It fails t if s has
// no marker.
func SplitCursor(t *testing.T, s string) (string, int) {
	t.Helper()
	i := strings.Index(s, CursorMarker)
	require.GreaterOrEqual(t, i, 0, "fixture has no cursor marker")
	return s[:i] + s[i+len(CursorMarker):], i
}

// WithFiles writes fileToCode (relative path to contents) under a fresh temporary directory and calls f with that directory. Go files without
// a package clause get "package mypkg" prepended. The directory is removed when the test ends.
func WithFiles(t *testing.T, fileToCode map[string]string, f func(dir string)) {
	t.Helper()
	dir := t.TempDir()

	for fileName, contents := range fileToCode {
		codeBytes := []byte(contents)

		// automatically insert a `package mypkg` if there's no package keyword:
		if strings.HasSuffix(fileName, ".go") && !bytes.Contains(codeBytes, []byte("\npackage ")) && !bytes.HasPrefix(codeBytes, []byte("package ")) {
			codeBytes = []byte("package mypkg\n\n" + contents)
		}

		path := filepath.Join(dir, fileName)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, codeBytes, 0o644))
	}

	f(dir)
}
