package syntax

import (
	"fmt"
	"strings"
)

// Segment is one step of a Ref's structural key: the Ordinal-th child of the given kind named Name.
type Segment struct {
	Kind    Kind
	Name    string
	Ordinal int
}

// Ref is a stable handle to an element of a file. Unlike an offset, a Ref survives edits elsewhere in the file (ex: inserting a comment above
// an earlier method), so it can be captured at collection time and resolved again at mutation time.
type Ref struct {
	Path string
	Key  []Segment
}

// RefOf builds the Ref of n, which must belong to a file at path.
func RefOf(path string, n Node) Ref {
	var segs []Segment
	for cur := n; cur != nil && cur.Kind() != KindFile; cur = cur.Parent() {
		segs = append(segs, segmentOf(cur))
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return Ref{Path: path, Key: segs}
}

func segmentOf(n Node) Segment {
	seg := Segment{Kind: n.Kind(), Name: n.Name()}
	parent := n.Parent()
	if parent == nil {
		return seg
	}
	for _, sib := range parent.Children(n.Kind()) {
		if sib == n {
			break
		}
		if sib.Name() == n.Name() {
			seg.Ordinal++
		}
	}
	return seg
}

// IsFile reports whether r refers to the file itself.
func (r Ref) IsFile() bool {
	return len(r.Key) == 0
}

// Name is the name of the referenced element, or "" for a file ref.
func (r Ref) Name() string {
	if len(r.Key) == 0 {
		return ""
	}
	return r.Key[len(r.Key)-1].Name
}

func (r Ref) String() string {
	var b strings.Builder
	b.WriteString(r.Path)
	for _, s := range r.Key {
		b.WriteByte('/')
		fmt.Fprintf(&b, "%s:%s", s.Kind, s.Name)
		if s.Ordinal > 0 {
			fmt.Fprintf(&b, "#%d", s.Ordinal)
		}
	}
	return b.String()
}

func resolve(f File, ref Ref) (Node, error) {
	var cur Node = f
	for _, seg := range ref.Key {
		var next Node
		n := 0
		for _, c := range cur.Children(seg.Kind) {
			if c.Name() != seg.Name {
				continue
			}
			if n == seg.Ordinal {
				next = c
				break
			}
			n++
		}
		if next == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		cur = next
	}
	return cur, nil
}
