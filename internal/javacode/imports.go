package javacode

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// imports records a file's non-static imports for resolving simple annotation names.
type imports struct {
	explicit map[string]string // simple name -> qualified name
	wildcard []string          // packages imported with ".*"
}

func collectImports(root *sitter.Node, src []byte) imports {
	imps := imports{explicit: make(map[string]string)}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		c := root.NamedChild(i)
		if c == nil || c.Type() != "import_declaration" {
			continue
		}
		s := strings.TrimSpace(c.Content(src))
		s = strings.TrimPrefix(s, "import")
		s = strings.TrimSuffix(strings.TrimSpace(s), ";")
		fields := strings.Fields(s)
		if len(fields) == 0 || fields[0] == "static" {
			continue
		}
		path := strings.Join(fields, "")
		if pkg, ok := strings.CutSuffix(path, ".*"); ok {
			imps.wildcard = append(imps.wildcard, pkg)
			continue
		}
		imps.explicit[path[strings.LastIndex(path, ".")+1:]] = path
	}
	return imps
}

// qualify returns the candidate qualified names of an annotation name. A dotted name is taken as already qualified. A simple name resolves
// through an explicit import, else to one candidate per wildcard import. Unresolvable names yield nothing.
func (imps imports) qualify(name string) []string {
	if strings.Contains(name, ".") {
		return []string{name}
	}
	if q, ok := imps.explicit[name]; ok {
		return []string{q}
	}
	out := make([]string, 0, len(imps.wildcard))
	for _, pkg := range imps.wildcard {
		out = append(out, pkg+"."+name)
	}
	return out
}
