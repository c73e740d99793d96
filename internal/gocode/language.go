// Package gocode is the Go adapter for the syntax package. It parses Go files with go/parser and exposes types, methods, interface methods,
// struct fields, and top-level functions as syntax nodes.
package gocode

import (
	"fmt"
	"go/parser"
	"go/token"

	"github.com/codalotl/autodoc/internal/detectlang"
	"github.com/codalotl/autodoc/internal/syntax"
)

// Test markers attached to Go test functions. They are the qualified type of the function's first parameter, except for examples, which have
// no parameters.
const (
	MarkerTest      = "testing.T"
	MarkerBenchmark = "testing.B"
	MarkerFuzz      = "testing.F"
	MarkerExample   = "testing.Example"
)

var testMarkers = []string{MarkerTest, MarkerBenchmark, MarkerFuzz, MarkerExample}

var commentStyle = syntax.CommentStyle{Open: "//", Line: "//"}

type lang struct{}

// Language returns the Go language adapter.
func Language() syntax.Language {
	return lang{}
}

func (lang) ID() detectlang.Lang               { return detectlang.LangGo }
func (lang) Name() string                      { return "Go" }
func (lang) CommentStyle() syntax.CommentStyle { return commentStyle }

func (lang) TestMarkers() []string {
	return testMarkers
}

func (lang) FormatComment(comment, indent, eol string) string {
	return syntax.FormatLineComment(comment, indent, eol)
}

func (lang) Validate(src []byte) error {
	_, err := parser.ParseFile(token.NewFileSet(), "", src, parser.ParseComments)
	return err
}

func (l lang) Parse(path string, src []byte) (syntax.File, error) {
	fset := token.NewFileSet()
	astFile, err := parser.ParseFile(fset, path, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", path, err)
	}
	return build(l, path, src, fset, astFile), nil
}
