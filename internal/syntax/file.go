package syntax

// ParsedFile is the File implementation shared by all language adapters.
type ParsedFile struct {
	*Element

	path    string
	src     []byte
	lang    Language
	locator func(offset int) Node
}

var _ File = (*ParsedFile)(nil)

// NewFile wraps root (which must be a KindFile element spanning src) into a File. root and its descendants must not be modified afterwards.
func NewFile(path string, src []byte, lang Language, root *Element) *ParsedFile {
	pf := &ParsedFile{Element: root, path: path, src: src, lang: lang}
	root.fileNode = pf
	return pf
}

// SetLocator installs a language-specific NodeAt implementation. A locator returning nil falls back to the generic span search.
func (f *ParsedFile) SetLocator(fn func(offset int) Node) {
	f.locator = fn
}

func (f *ParsedFile) Path() string       { return f.path }
func (f *ParsedFile) Source() []byte     { return f.src }
func (f *ParsedFile) Language() Language { return f.lang }

// Parent is always nil for a file.
func (f *ParsedFile) Parent() Node { return nil }

func (f *ParsedFile) NodeAt(offset int) Node {
	if offset < 0 || offset > len(f.src) {
		return nil
	}
	if f.locator != nil {
		if n := f.locator(offset); n != nil {
			return n
		}
	}
	return f.innermost(offset)
}

func (f *ParsedFile) innermost(offset int) Node {
	var found Node = f
	cur := f.Element
	for {
		var next *Element
		for _, c := range cur.children {
			if Extent(c).Contains(offset) {
				next = c
				break
			}
		}
		if next == nil {
			return found
		}
		found = next
		cur = next
	}
}

// Elements returns every element of the file (excluding the file itself) in depth-first declaration order.
func (f *ParsedFile) Elements() []Node {
	var out []Node
	f.Element.walk(func(e *Element) bool {
		if e != f.Element {
			out = append(out, e)
		}
		return true
	})
	return out
}

func (f *ParsedFile) Resolve(ref Ref) (Node, error) {
	return resolve(f, ref)
}
