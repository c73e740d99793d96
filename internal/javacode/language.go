// Package javacode is the Java adapter for the syntax package. Files are parsed with tree-sitter and converted eagerly into syntax elements, so
// no tree-sitter memory outlives Parse.
package javacode

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/codalotl/autodoc/internal/detectlang"
	"github.com/codalotl/autodoc/internal/syntax"
)

// ErrSyntax is returned by Validate when tree-sitter reports error nodes.
var ErrSyntax = errors.New("javacode: source contains syntax errors")

// Qualified annotation names that mark a method as a test.
var testMarkers = []string{
	"org.junit.Test",
	"org.junit.jupiter.api.Test",
	"org.junit.jupiter.params.ParameterizedTest",
	"org.junit.jupiter.api.RepeatedTest",
	"org.junit.jupiter.api.TestFactory",
	"org.junit.jupiter.api.TestTemplate",
	"org.testng.annotations.Test",
}

var commentStyle = syntax.CommentStyle{Open: "/**", Close: "*/", Line: "//"}

type lang struct{}

// Language returns the Java language adapter.
func Language() syntax.Language {
	return lang{}
}

func (lang) ID() detectlang.Lang               { return detectlang.LangJava }
func (lang) Name() string                      { return "Java" }
func (lang) CommentStyle() syntax.CommentStyle { return commentStyle }
func (lang) TestMarkers() []string             { return testMarkers }

func (lang) FormatComment(comment, indent, eol string) string {
	return syntax.FormatBlockComment(commentStyle, comment, indent, eol)
}

func (lang) Validate(src []byte) error {
	tree, err := parseTree(context.Background(), src)
	if err != nil {
		return err
	}
	defer tree.Close()

	if tree.RootNode().HasError() {
		return ErrSyntax
	}
	return nil
}

// Parse builds the element tree of src. tree-sitter is error tolerant, so a file with syntax errors still yields the elements it could
// recognize.
func (l lang) Parse(path string, src []byte) (syntax.File, error) {
	tree, err := parseTree(context.Background(), src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("failed to parse file %s: tree-sitter returned nil root node", path)
	}

	b := &builder{src: src, imports: collectImports(root, src)}
	fileElem := syntax.NewElement(syntax.KindFile, packageName(root, src), syntax.Span{Start: 0, End: len(src)})
	b.addMembers(fileElem, root)

	return syntax.NewFile(path, src, l, fileElem), nil
}

// parseTree uses a new parser per call; tree-sitter parsers are not safe for concurrent use.
func parseTree(ctx context.Context, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(java.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	return tree, nil
}
