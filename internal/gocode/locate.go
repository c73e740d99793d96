package gocode

import (
	"go/ast"

	"github.com/codalotl/autodoc/internal/syntax"
	"golang.org/x/tools/go/ast/astutil"
)

// locator returns the NodeAt implementation for pf. Doc comments and directives are not on the AST path of the declaration they belong to, so
// those ranges are checked first; everything else walks the enclosing AST path outwards until it reaches a node that has an element.
func (b *builder) locator(f *ast.File, pf *syntax.ParsedFile) func(offset int) syntax.Node {
	return func(offset int) syntax.Node {
		if n := commentOwner(pf, offset); n != nil {
			return n
		}

		pos := b.tf.Pos(offset)
		path, _ := astutil.PathEnclosingInterval(f, pos, pos)
		for _, n := range path {
			if e, ok := b.byNode[n]; ok {
				return e
			}
		}
		return pf
	}
}

// commentOwner returns the innermost element whose doc comment or leading directives contain offset.
func commentOwner(pf *syntax.ParsedFile, offset int) syntax.Node {
	var owner syntax.Node
	for _, n := range pf.Elements() {
		if doc, ok := n.DocComment(); ok && doc.Contains(offset) {
			owner = n
			continue
		}
		if h := n.HeaderSpan(); h.Start < n.Span().Start && offset >= h.Start && offset < n.Span().Start {
			owner = n
		}
	}
	return owner
}
