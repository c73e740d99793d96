// Package syntax is the language-agnostic view of a parsed source file that the rest of autodoc works against. Per-language adapters (gocode,
// javacode) build an Element tree for a file; the locator, collector, and mutator only ever see the Node and File interfaces.
package syntax

import (
	"errors"
	"fmt"
)

// Kind is the structural kind of a Node.
type Kind int

const (
	KindFile Kind = iota
	KindType
	KindFunction
	KindField
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindType:
		return "type"
	case KindFunction:
		return "func"
	case KindField:
		return "field"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Span is a half-open byte range [Start, End) into a file's source.
type Span struct {
	Start int
	End   int
}

// Contains reports whether offset lies within s. The end offset is inclusive so that a cursor placed directly after an element's last byte still
// belongs to it.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset <= s.End
}

func (s Span) IsZero() bool {
	return s.Start == 0 && s.End == 0
}

// Node is a single structural element of a source file.
type Node interface {
	Kind() Kind
	Name() string

	// Span is the element's text, excluding its doc comment.
	Span() Span

	// NameSpan is the range of the element's identifier. Zero for elements without one (ex: the file).
	NameSpan() Span

	// HeaderSpan runs from the first modifier, annotation, directive, or keyword up to the start of the body. HeaderSpan().Start is where a doc
	// comment belongs.
	HeaderSpan() Span

	// DocComment returns the range of the element's doc comment, if it has one.
	DocComment() (Span, bool)

	// Parent is nil for the file node.
	Parent() Node

	// Children returns the direct children of the given kind in declaration order.
	Children(kind Kind) []Node

	// Markers are the fully qualified test-marker names attached to the element (annotations in Java, testing parameter types in Go).
	Markers() []string
}

// File is the root node of a parsed source file.
type File interface {
	Node
	Path() string
	Source() []byte
	Language() Language

	// NodeAt returns the innermost node whose extent (including its doc comment) contains offset. It returns nil when offset is outside
	// [0, len(Source())].
	NodeAt(offset int) Node

	// Resolve finds the node ref points at. It returns ErrNotFound if the element no longer exists.
	Resolve(ref Ref) (Node, error)
}

var (
	ErrNotFound    = errors.New("syntax: element not found")
	ErrUnsupported = errors.New("syntax: unsupported language")
)

// AncestorOfKind returns n itself if it has the kind, otherwise the closest ancestor of that kind. It returns nil if there is none.
func AncestorOfKind(n Node, kind Kind) Node {
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur.Kind() == kind {
			return cur
		}
	}
	return nil
}

// Extent is n's span widened to include its doc comment and header.
func Extent(n Node) Span {
	s := n.Span()
	if h := n.HeaderSpan(); h != (Span{}) && h.Start < s.Start {
		s.Start = h.Start
	}
	if doc, ok := n.DocComment(); ok && doc.Start < s.Start {
		s.Start = doc.Start
	}
	return s
}

// Text returns the source text of span, clamped to src.
func Text(src []byte, span Span) string {
	start, end := span.Start, span.End
	if start < 0 {
		start = 0
	}
	if end > len(src) {
		end = len(src)
	}
	if start >= end {
		return ""
	}
	return string(src[start:end])
}

// HasMarker reports whether any of n's markers is in recognized.
func HasMarker(n Node, recognized []string) bool {
	for _, m := range n.Markers() {
		for _, r := range recognized {
			if m == r {
				return true
			}
		}
	}
	return false
}

// IsTestFunction reports whether n is a function carrying one of lang's test markers.
func IsTestFunction(n Node, lang Language) bool {
	if n == nil || n.Kind() != KindFunction || lang == nil {
		return false
	}
	return HasMarker(n, lang.TestMarkers())
}
