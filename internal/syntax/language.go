package syntax

import (
	"fmt"
	"sort"

	"github.com/codalotl/autodoc/internal/detectlang"
)

// CommentStyle describes how a language writes doc comments.
type CommentStyle struct {
	// Open starts a doc comment ("/**" for Java, "//" for Go).
	Open string

	// Close ends a block doc comment. Empty for line-based docs.
	Close string

	// Line is the line-comment prefix.
	Line string
}

// LineBased reports whether doc comments are a run of line comments (as in Go) rather than one block.
func (cs CommentStyle) LineBased() bool {
	return cs.Close == ""
}

// Language is a source language autodoc can document.
type Language interface {
	ID() detectlang.Lang
	Name() string

	// Parse builds the syntax tree of src. path is used for diagnostics and path-dependent rules (ex: Go test files).
	Parse(path string, src []byte) (File, error)

	CommentStyle() CommentStyle

	// TestMarkers lists the qualified marker names that make a function a test function.
	TestMarkers() []string

	// FormatComment lays out a normalized doc comment for insertion at a line indented by indent, joining lines with eol. The result has no
	// leading indent on its first line and no trailing eol.
	FormatComment(comment, indent, eol string) string

	// Validate returns an error if src does not parse cleanly.
	Validate(src []byte) error
}

// Registry maps detected languages to their adapters.
type Registry struct {
	langs map[detectlang.Lang]Language
}

func NewRegistry(langs ...Language) *Registry {
	r := &Registry{langs: make(map[detectlang.Lang]Language, len(langs))}
	for _, l := range langs {
		r.langs[l.ID()] = l
	}
	return r
}

// ForPath returns the language for path's extension.
func (r *Registry) ForPath(path string) (Language, bool) {
	l, ok := r.langs[detectlang.ForPath(path)]
	return l, ok
}

// Supports reports whether path has a registered language.
func (r *Registry) Supports(path string) bool {
	_, ok := r.ForPath(path)
	return ok
}

// Languages returns the registered languages sorted by name.
func (r *Registry) Languages() []Language {
	out := make([]Language, 0, len(r.langs))
	for _, l := range r.langs {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Parse parses src with the language registered for path.
func (r *Registry) Parse(path string, src []byte) (File, error) {
	l, ok := r.ForPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
	return l.Parse(path, src)
}
