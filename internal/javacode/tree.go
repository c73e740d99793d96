package javacode

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codalotl/autodoc/internal/syntax"
)

type builder struct {
	src     []byte
	imports imports
}

func (b *builder) span(n *sitter.Node) syntax.Span {
	return syntax.Span{Start: int(n.StartByte()), End: int(n.EndByte())}
}

func (b *builder) text(n *sitter.Node) string {
	return n.Content(b.src)
}

// addMembers adds the declarations found directly in container (a program or a type body) to parent.
func (b *builder) addMembers(parent *syntax.Element, container *sitter.Node) {
	for i := 0; i < int(container.NamedChildCount()); i++ {
		child := container.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration", "annotation_type_declaration":
			b.addType(parent, child)
		case "method_declaration", "constructor_declaration", "compact_constructor_declaration", "annotation_type_element_declaration":
			if parent.Kind() == syntax.KindType {
				b.addFunction(parent, child)
			}
		case "field_declaration", "constant_declaration":
			if parent.Kind() == syntax.KindType {
				b.addField(parent, child)
			}
		case "enum_constant":
			b.addNamed(parent, child, syntax.KindField)
		case "enum_body_declarations":
			b.addMembers(parent, child)
		}
	}
}

func (b *builder) addType(parent *syntax.Element, n *sitter.Node) {
	e := b.addNamed(parent, n, syntax.KindType)
	if e == nil {
		return
	}
	if body := n.ChildByFieldName("body"); body != nil {
		b.addMembers(e, body)
	}
}

func (b *builder) addFunction(parent *syntax.Element, n *sitter.Node) {
	e := b.addNamed(parent, n, syntax.KindFunction)
	if e == nil {
		return
	}
	for _, name := range b.annotations(n) {
		for _, q := range b.imports.qualify(name) {
			e.AddMarker(q)
		}
	}
}

func (b *builder) addField(parent *syntax.Element, n *sitter.Node) {
	var names []string
	var nameSpan syntax.Span
	for i := 0; i < int(n.NamedChildCount()); i++ {
		d := n.NamedChild(i)
		if d == nil || d.Type() != "variable_declarator" {
			continue
		}
		nameNode := d.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		if len(names) == 0 {
			nameSpan = b.span(nameNode)
		}
		names = append(names, b.text(nameNode))
	}
	if len(names) == 0 {
		return
	}

	e := syntax.NewElement(syntax.KindField, strings.Join(names, ", "), b.span(n)).SetNameSpan(nameSpan)
	b.applyDoc(e, n)
	parent.AddChild(e)
}

// addNamed adds an element for a declaration with a "name" field. The header runs up to the "body" field when there is one.
func (b *builder) addNamed(parent *syntax.Element, n *sitter.Node, kind syntax.Kind) *syntax.Element {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	span := b.span(n)
	e := syntax.NewElement(kind, b.text(nameNode), span).SetNameSpan(b.span(nameNode))
	if body := n.ChildByFieldName("body"); body != nil {
		e.SetHeaderSpan(syntax.Span{Start: span.Start, End: int(body.StartByte())})
	}
	b.applyDoc(e, n)
	parent.AddChild(e)
	return e
}

// applyDoc attaches the Javadoc comment directly preceding n (separated only by whitespace). Plain block and line comments are not docs.
func (b *builder) applyDoc(e *syntax.Element, n *sitter.Node) {
	prev := n.PrevNamedSibling()
	if prev == nil {
		return
	}
	switch prev.Type() {
	case "block_comment", "comment":
	default:
		return
	}
	text := b.text(prev)
	if !strings.HasPrefix(text, "/**") || text == "/**/" {
		return
	}
	if strings.TrimSpace(string(b.src[prev.EndByte():n.StartByte()])) != "" {
		return
	}
	e.SetDocComment(b.span(prev))
}

// annotations returns the names of the annotations in n's modifiers, as written (ex: "Test" or "org.junit.Test").
func (b *builder) annotations(n *sitter.Node) []string {
	var out []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		mods := n.NamedChild(i)
		if mods == nil || mods.Type() != "modifiers" {
			continue
		}
		for j := 0; j < int(mods.NamedChildCount()); j++ {
			a := mods.NamedChild(j)
			if a == nil || (a.Type() != "marker_annotation" && a.Type() != "annotation") {
				continue
			}
			if name := a.ChildByFieldName("name"); name != nil {
				out = append(out, strings.Join(strings.Fields(b.text(name)), ""))
			}
		}
	}
	return out
}

func packageName(root *sitter.Node, src []byte) string {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		c := root.NamedChild(i)
		if c == nil || c.Type() != "package_declaration" {
			continue
		}
		s := strings.TrimSpace(c.Content(src))
		s = strings.TrimPrefix(s, "package")
		s = strings.TrimSuffix(strings.TrimSpace(s), ";")
		return strings.Join(strings.Fields(s), "")
	}
	return ""
}
