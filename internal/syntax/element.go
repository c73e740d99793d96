package syntax

// Element is the concrete Node that language adapters build. Adapters construct elements with NewElement, attach spans with the setters, and
// link them with AddChild before handing the tree to NewFile. Elements are immutable once the file is built.
type Element struct {
	kind       Kind
	name       string
	span       Span
	nameSpan   Span
	headerSpan Span
	doc        Span
	hasDoc     bool
	markers    []string

	parent   *Element
	children []*Element

	// fileNode is set on the root element so that Parent() of top-level elements yields the File.
	fileNode *ParsedFile
}

var _ Node = (*Element)(nil)

func NewElement(kind Kind, name string, span Span) *Element {
	return &Element{kind: kind, name: name, span: span, headerSpan: span}
}

func (e *Element) SetNameSpan(s Span) *Element {
	e.nameSpan = s
	return e
}

func (e *Element) SetHeaderSpan(s Span) *Element {
	e.headerSpan = s
	return e
}

func (e *Element) SetDocComment(s Span) *Element {
	e.doc = s
	e.hasDoc = true
	return e
}

func (e *Element) AddMarker(qualified string) *Element {
	e.markers = append(e.markers, qualified)
	return e
}

// AddChild appends child to e's children and sets its parent.
func (e *Element) AddChild(child *Element) {
	child.parent = e
	e.children = append(e.children, child)
}

func (e *Element) Kind() Kind       { return e.kind }
func (e *Element) Name() string     { return e.name }
func (e *Element) Span() Span       { return e.span }
func (e *Element) NameSpan() Span   { return e.nameSpan }
func (e *Element) HeaderSpan() Span { return e.headerSpan }

func (e *Element) DocComment() (Span, bool) {
	return e.doc, e.hasDoc
}

func (e *Element) Markers() []string {
	return e.markers
}

func (e *Element) Parent() Node {
	if e.parent == nil {
		return nil
	}
	if e.parent.fileNode != nil {
		return e.parent.fileNode
	}
	return e.parent
}

func (e *Element) Children(kind Kind) []Node {
	var out []Node
	for _, c := range e.children {
		if c.kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// walk visits e and its descendants depth-first, pre-order. It stops descending into a subtree when fn returns false.
func (e *Element) walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.children {
		c.walk(fn)
	}
}
