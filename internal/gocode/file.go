package gocode

import (
	"path/filepath"
	"regexp"
	"strings"
)

// genRE matches the standard "Code generated … DO NOT EDIT." header at the start of a line. It runs in multiline mode so "^" anchors to line
// starts within the whole file.
var genRE = regexp.MustCompile(`(?m)^//\s*Code generated .* DO NOT EDIT\.?`)

// IsCodeGenerated reports whether src was created by code generation tools. Generated files are never documented.
func IsCodeGenerated(src []byte) bool {
	return genRE.Match(src)
}

// IsTestFile reports whether path is a _test.go file.
func IsTestFile(path string) bool {
	return strings.HasSuffix(filepath.Base(path), "_test.go")
}

// isDirective reports whether a comment line is a tool directive rather than prose. Directives attached to a declaration stay directly above
// it and are never part of its doc comment.
func isDirective(text string) bool {
	switch {
	case strings.HasPrefix(text, "//nolint"),
		strings.HasPrefix(text, "// +build"),
		strings.HasPrefix(text, "//line "),
		strings.HasPrefix(text, "//export "),
		strings.HasPrefix(text, "//extern "):
		return true
	}

	// "//[a-z0-9]+:[a-z0-9]", as with //go:generate or //lint:ignore.
	rest, ok := strings.CutPrefix(text, "//")
	if !ok {
		return false
	}
	colon := strings.Index(rest, ":")
	if colon <= 0 || colon+1 >= len(rest) {
		return false
	}
	for i := 0; i < colon; i++ {
		c := rest[i]
		if !('a' <= c && c <= 'z' || '0' <= c && c <= '9') {
			return false
		}
	}
	c := rest[colon+1]
	return 'a' <= c && c <= 'z' || '0' <= c && c <= '9'
}
