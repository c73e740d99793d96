// Package scope decides what a cursor position asks to document: the enclosing function, the enclosing field, a type on its own, a type with
// everything inside it, or the whole file.
package scope

import (
	"github.com/codalotl/autodoc/internal/syntax"
	"github.com/codalotl/autodoc/internal/task"
)

// Result is the element a cursor resolves to.
type Result struct {
	Element syntax.Node
	Kind    task.Kind

	// ExpandToContainer asks for the element and everything inside it (a type's members, or every type of a file).
	ExpandToContainer bool
}

// Locate resolves offset in file. It returns false when file is nil or offset is outside the source, in which case callers fall back to the
// whole file.
//
// The nearest enclosing function always wins, then the nearest field. A cursor in a type but outside any member selects the type alone when
// it is on the type's name, header, or doc comment, and the type with all its members otherwise. Anything else is the whole file.
func Locate(file syntax.File, offset int) (Result, bool) {
	if file == nil {
		return Result{}, false
	}
	n := file.NodeAt(offset)
	if n == nil {
		return Result{}, false
	}

	if fn := syntax.AncestorOfKind(n, syntax.KindFunction); fn != nil {
		kind := task.KindFunction
		if syntax.IsTestFunction(fn, file.Language()) {
			kind = task.KindTestFunction
		}
		return Result{Element: fn, Kind: kind}, true
	}

	if field := syntax.AncestorOfKind(n, syntax.KindField); field != nil {
		return Result{Element: field, Kind: task.KindField}, true
	}

	if typ := syntax.AncestorOfKind(n, syntax.KindType); typ != nil {
		return Result{Element: typ, Kind: task.KindType, ExpandToContainer: !onDeclaration(typ, offset)}, true
	}

	return Result{Element: file, Kind: task.KindFile, ExpandToContainer: true}, true
}

// WholeFile is the result used when no cursor is given.
func WholeFile(file syntax.File) Result {
	return Result{Element: file, Kind: task.KindFile, ExpandToContainer: true}
}

func onDeclaration(n syntax.Node, offset int) bool {
	if n.NameSpan().Contains(offset) || n.HeaderSpan().Contains(offset) {
		return true
	}
	doc, ok := n.DocComment()
	return ok && doc.Contains(offset)
}
