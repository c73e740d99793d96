package syntax

import (
	"testing"

	"github.com/codalotl/autodoc/internal/detectlang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLang struct{}

func (fakeLang) ID() detectlang.Lang                          { return detectlang.LangJava }
func (fakeLang) Name() string                                 { return "fake" }
func (fakeLang) Parse(path string, src []byte) (File, error) { return nil, nil }
func (fakeLang) CommentStyle() CommentStyle                   { return CommentStyle{Open: "/**", Close: "*/", Line: "//"} }
func (fakeLang) TestMarkers() []string                        { return []string{"x.Test"} }
func (fakeLang) FormatComment(c, indent, eol string) string {
	return FormatBlockComment(fakeLang{}.CommentStyle(), c, indent, eol)
}
func (fakeLang) Validate(src []byte) error { return nil }

// buildFile builds:
//
//	[0,100) file
//	  [10,90) type A (doc [2,9), header [10,20))
//	    [30,40) func f
//	    [50,60) func f
//	    [70,80) field x
//	    [82,88) type B
func buildFile() *ParsedFile {
	root := NewElement(KindFile, "f.fake", Span{0, 100})
	a := NewElement(KindType, "A", Span{10, 90}).SetDocComment(Span{2, 9}).SetHeaderSpan(Span{10, 20}).SetNameSpan(Span{16, 17})
	f1 := NewElement(KindFunction, "f", Span{30, 40})
	f2 := NewElement(KindFunction, "f", Span{50, 60}).AddMarker("x.Test")
	x := NewElement(KindField, "x", Span{70, 80})
	b := NewElement(KindType, "B", Span{82, 88})
	a.AddChild(f1)
	a.AddChild(f2)
	a.AddChild(x)
	a.AddChild(b)
	root.AddChild(a)
	return NewFile("f.fake", make([]byte, 100), fakeLang{}, root)
}

func TestNodeAt(t *testing.T) {
	f := buildFile()

	assert.Nil(t, f.NodeAt(-1))
	assert.Nil(t, f.NodeAt(101))
	assert.Equal(t, f, f.NodeAt(0))
	assert.Equal(t, f, f.NodeAt(100))

	// Inside the doc comment counts as inside the type.
	assert.Equal(t, "A", f.NodeAt(3).Name())
	assert.Equal(t, "A", f.NodeAt(25).Name())

	n := f.NodeAt(55)
	require.NotNil(t, n)
	assert.Equal(t, KindFunction, n.Kind())
	assert.Equal(t, Span{50, 60}, n.Span())

	assert.Equal(t, "B", f.NodeAt(85).Name())
}

func TestAncestorOfKind(t *testing.T) {
	f := buildFile()
	fn := f.NodeAt(35)
	require.NotNil(t, fn)

	assert.Equal(t, fn, AncestorOfKind(fn, KindFunction))
	typ := AncestorOfKind(fn, KindType)
	require.NotNil(t, typ)
	assert.Equal(t, "A", typ.Name())
	assert.Equal(t, f, AncestorOfKind(fn, KindFile))
	assert.Nil(t, AncestorOfKind(typ, KindField))
}

func TestRefResolve(t *testing.T) {
	f := buildFile()
	second := f.NodeAt(55)
	require.NotNil(t, second)

	ref := RefOf(f.Path(), second)
	assert.Equal(t, []Segment{{Kind: KindType, Name: "A"}, {Kind: KindFunction, Name: "f", Ordinal: 1}}, ref.Key)
	assert.Equal(t, "f.fake/type:A/func:f#1", ref.String())
	assert.Equal(t, "f", ref.Name())

	got, err := f.Resolve(ref)
	require.NoError(t, err)
	assert.Equal(t, second, got)

	fileRef := RefOf(f.Path(), f)
	assert.True(t, fileRef.IsFile())
	got, err = f.Resolve(fileRef)
	require.NoError(t, err)
	assert.Equal(t, f, got)

	_, err = f.Resolve(Ref{Path: f.Path(), Key: []Segment{{Kind: KindType, Name: "Missing"}}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExtentAndMarkers(t *testing.T) {
	f := buildFile()
	a := f.Children(KindType)[0]
	assert.Equal(t, Span{2, 90}, Extent(a))

	fns := a.Children(KindFunction)
	require.Len(t, fns, 2)
	assert.False(t, IsTestFunction(fns[0], fakeLang{}))
	assert.True(t, IsTestFunction(fns[1], fakeLang{}))
	assert.False(t, IsTestFunction(a, fakeLang{}))

	assert.Len(t, f.Elements(), 5)
}

func TestNormalizeComment(t *testing.T) {
	java := CommentStyle{Open: "/**", Close: "*/", Line: "//"}
	golang := CommentStyle{Open: "//", Line: "//"}

	tests := []struct {
		name  string
		style CommentStyle
		in    string
		want  string
	}{
		{"java complete", java, "/** fetch user name */", "/** fetch user name */"},
		{"java bare", java, "fetch user name", "/** fetch user name */"},
		{"java bare multiline", java, "Fetches.\n\nMore.", "/**\nFetches.\n\nMore.\n*/"},
		{"java plain block", java, "/* fetch */", "/** fetch */"},
		{"java missing close", java, "/** fetch", "/** fetch\n*/"},
		{"java crlf", java, "/**\r\n * a\r\n */\r\n", "/**\n * a\n */"},
		{"go bare", golang, "Foo does things.\n\nMore.", "// Foo does things.\n//\n// More."},
		{"go prefixed", golang, "// Foo does things.", "// Foo does things."},
		{"go block kept", golang, "/* Foo */", "/* Foo */"},
		{"empty", golang, "  \n ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeComment(tt.style, tt.in))
		})
	}
}

func TestFormatComment(t *testing.T) {
	java := CommentStyle{Open: "/**", Close: "*/", Line: "//"}

	got := FormatBlockComment(java, "/**\nFetches the name.\n\n@return the name\n*/", "    ", "\n")
	assert.Equal(t, "/**\n     * Fetches the name.\n     *\n     * @return the name\n     */", got)

	got = FormatBlockComment(java, "/**\n   * already starred\n */", "\t", "\r\n")
	assert.Equal(t, "/**\r\n\t * already starred\r\n\t */", got)

	assert.Equal(t, "/** one line */", FormatBlockComment(java, "  /** one line */", "  ", "\n"))

	assert.Equal(t, "// A\n\t//\n\t// B", FormatLineComment("// A\n//\n  // B", "\t", "\n"))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(fakeLang{})
	l, ok := r.ForPath("src/Foo.java")
	require.True(t, ok)
	assert.Equal(t, "fake", l.Name())
	assert.False(t, r.Supports("main.go"))

	_, err := r.Parse("main.go", nil)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Len(t, r.Languages(), 1)
}
