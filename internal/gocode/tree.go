package gocode

import (
	"go/ast"
	"go/token"
	"go/types"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/codalotl/autodoc/internal/syntax"
)

// builder turns a parsed *ast.File into a syntax element tree.
type builder struct {
	tf     *token.File
	isTest bool

	// testingName is the local name of the "testing" import ("" if not imported, "." for a dot import).
	testingName string

	byNode map[ast.Node]*syntax.Element
	types  map[string]*syntax.Element
}

func build(l lang, path string, src []byte, fset *token.FileSet, f *ast.File) *syntax.ParsedFile {
	b := &builder{
		tf:     fset.File(f.Pos()),
		isTest: IsTestFile(path),
		byNode: make(map[ast.Node]*syntax.Element),
		types:  make(map[string]*syntax.Element),
	}
	b.testingName = importName(f, "testing")

	root := syntax.NewElement(syntax.KindFile, f.Name.Name, syntax.Span{Start: 0, End: len(src)})
	root.SetHeaderSpan(b.span(f.Package, f.Name.End()))

	// Types first so that methods declared above their receiver type still find it.
	for _, decl := range f.Decls {
		if gd, ok := decl.(*ast.GenDecl); ok && gd.Tok == token.TYPE {
			b.addTypes(root, gd)
		}
	}
	for _, decl := range f.Decls {
		if fd, ok := decl.(*ast.FuncDecl); ok {
			b.addFunc(root, fd)
		}
	}

	pf := syntax.NewFile(path, src, l, root)
	pf.SetLocator(b.locator(f, pf))
	return pf
}

func (b *builder) off(p token.Pos) int {
	return b.tf.Offset(p)
}

func (b *builder) span(start, end token.Pos) syntax.Span {
	return syntax.Span{Start: b.off(start), End: b.off(end)}
}

func (b *builder) nodeSpan(n ast.Node) syntax.Span {
	return b.span(n.Pos(), n.End())
}

func (b *builder) addTypes(root *syntax.Element, gd *ast.GenDecl) {
	for _, spec := range gd.Specs {
		ts, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}

		// An ungrouped "type X ..." owns the keyword and the decl's doc. In a group, each spec stands alone.
		span, doc := b.nodeSpan(ts), ts.Doc
		if !gd.Lparen.IsValid() {
			span, doc = b.nodeSpan(gd), gd.Doc
		}

		e := syntax.NewElement(syntax.KindType, ts.Name.Name, span).SetNameSpan(b.nodeSpan(ts.Name))
		header := span
		switch t := ts.Type.(type) {
		case *ast.StructType:
			if t.Fields != nil && t.Fields.Opening.IsValid() {
				header.End = b.off(t.Fields.Opening)
			}
			b.addFields(e, t)
		case *ast.InterfaceType:
			if t.Methods != nil && t.Methods.Opening.IsValid() {
				header.End = b.off(t.Methods.Opening)
			}
			b.addInterfaceMethods(e, t)
		}
		e.SetHeaderSpan(header)
		b.applyDoc(e, doc)

		root.AddChild(e)
		b.byNode[ts] = e
		if !gd.Lparen.IsValid() {
			b.byNode[gd] = e
		}
		if _, dup := b.types[ts.Name.Name]; !dup {
			b.types[ts.Name.Name] = e
		}
	}
}

func (b *builder) addFields(parent *syntax.Element, st *ast.StructType) {
	if st.Fields == nil {
		return
	}
	for _, f := range st.Fields.List {
		var name string
		var nameSpan syntax.Span
		if len(f.Names) > 0 {
			names := make([]string, len(f.Names))
			for i, n := range f.Names {
				names[i] = n.Name
			}
			name = strings.Join(names, ", ")
			nameSpan = b.nodeSpan(f.Names[0])
		} else {
			name = embeddedName(f.Type)
			nameSpan = b.nodeSpan(f.Type)
		}

		e := syntax.NewElement(syntax.KindField, name, b.nodeSpan(f)).SetNameSpan(nameSpan)
		b.applyDoc(e, f.Doc)
		parent.AddChild(e)
		b.byNode[f] = e
	}
}

func (b *builder) addInterfaceMethods(parent *syntax.Element, it *ast.InterfaceType) {
	if it.Methods == nil {
		return
	}
	for _, f := range it.Methods.List {
		if _, ok := f.Type.(*ast.FuncType); !ok || len(f.Names) == 0 {
			continue // embedded interface or type union
		}
		e := syntax.NewElement(syntax.KindFunction, f.Names[0].Name, b.nodeSpan(f)).SetNameSpan(b.nodeSpan(f.Names[0]))
		b.applyDoc(e, f.Doc)
		parent.AddChild(e)
		b.byNode[f] = e
	}
}

func (b *builder) addFunc(root *syntax.Element, fd *ast.FuncDecl) {
	span := b.nodeSpan(fd)
	e := syntax.NewElement(syntax.KindFunction, fd.Name.Name, span).SetNameSpan(b.nodeSpan(fd.Name))
	header := span
	if fd.Body != nil {
		header.End = b.off(fd.Body.Lbrace)
	}
	e.SetHeaderSpan(header)
	b.applyDoc(e, fd.Doc)
	b.addTestMarkers(e, fd)

	parent := root
	if fd.Recv != nil && len(fd.Recv.List) > 0 {
		if t, ok := b.types[embeddedName(fd.Recv.List[0].Type)]; ok {
			parent = t
		}
	}
	parent.AddChild(e)
	b.byNode[fd] = e
}

// applyDoc attaches cg to e as its doc comment. Directive lines at the end of the group are left out of the doc range, and e's header is
// extended up to the first of them so that a replacement comment lands above the directives.
func (b *builder) applyDoc(e *syntax.Element, cg *ast.CommentGroup) {
	if cg == nil || len(cg.List) == 0 {
		return
	}

	firstDirective := len(cg.List)
	for i := len(cg.List) - 1; i >= 0 && isDirective(cg.List[i].Text); i-- {
		firstDirective = i
	}
	if firstDirective < len(cg.List) {
		h := e.HeaderSpan()
		h.Start = b.off(cg.List[firstDirective].Pos())
		e.SetHeaderSpan(h)
	}
	if firstDirective == 0 {
		return
	}
	e.SetDocComment(b.span(cg.List[0].Pos(), cg.List[firstDirective-1].End()))
}

func (b *builder) addTestMarkers(e *syntax.Element, fd *ast.FuncDecl) {
	if !b.isTest || fd.Recv != nil || fd.Type.TypeParams != nil || b.testingName == "" {
		return
	}
	name := fd.Name.Name
	params := fd.Type.Params.List

	if hasTestPrefix(name, "Example") {
		if len(params) == 0 && (fd.Type.Results == nil || len(fd.Type.Results.List) == 0) {
			e.AddMarker(MarkerExample)
		}
		return
	}

	prefixes := []struct {
		prefix string
		marker string
	}{
		{"Test", MarkerTest},
		{"Benchmark", MarkerBenchmark},
		{"Fuzz", MarkerFuzz},
	}
	for _, p := range prefixes {
		if !hasTestPrefix(name, p.prefix) || len(params) == 0 {
			continue
		}
		if b.qualifiedPointerType(params[0].Type) == p.marker {
			e.AddMarker(p.marker)
		}
	}
}

// qualifiedPointerType returns "testing.X" if expr is *X from the testing package, or "" otherwise.
func (b *builder) qualifiedPointerType(expr ast.Expr) string {
	star, ok := expr.(*ast.StarExpr)
	if !ok {
		return ""
	}
	switch x := star.X.(type) {
	case *ast.SelectorExpr:
		if id, ok := x.X.(*ast.Ident); ok && id.Name == b.testingName {
			return "testing." + x.Sel.Name
		}
	case *ast.Ident:
		if b.testingName == "." {
			return "testing." + x.Name
		}
	}
	return ""
}

// hasTestPrefix applies the go test naming rule: name is prefix, or prefix followed by a non-lowercase rune.
func hasTestPrefix(name, prefix string) bool {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok {
		return false
	}
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return !unicode.IsLower(r)
}

// embeddedName returns the type name of an embedded field or receiver: "*pkg.Base[T]" yields "Base".
func embeddedName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return embeddedName(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.IndexExpr:
		return embeddedName(t.X)
	case *ast.IndexListExpr:
		return embeddedName(t.X)
	case *ast.ParenExpr:
		return embeddedName(t.X)
	default:
		return types.ExprString(expr)
	}
}

// importName returns the local name under which f imports importPath, or "" if it doesn't.
func importName(f *ast.File, importPath string) string {
	for _, imp := range f.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil || p != importPath {
			continue
		}
		if imp.Name != nil {
			if imp.Name.Name == "_" {
				continue
			}
			return imp.Name.Name
		}
		return importPath[strings.LastIndex(importPath, "/")+1:]
	}
	return ""
}
