// Package collect turns a scope (an element, a type with its members, a file, or a directory) into the ordered list of documentation tasks a run
// will work through.
package collect

import (
	"github.com/codalotl/autodoc/internal/buffer"
	"github.com/codalotl/autodoc/internal/gocode"
	"github.com/codalotl/autodoc/internal/q/health"
	"github.com/codalotl/autodoc/internal/scope"
	"github.com/codalotl/autodoc/internal/syntax"
	"github.com/codalotl/autodoc/internal/task"
)

// DefaultMaxSnippetLines is the default line cap of optimized type snippets.
const DefaultMaxSnippetLines = 50

// Options selects which elements become tasks.
type Options struct {
	health.Ctx

	// Per-kind toggles.
	Types         bool
	Functions     bool
	TestFunctions bool
	Fields        bool

	// SkipExisting drops elements that already have a doc comment.
	SkipExisting bool

	// OptimizeTypeSnippets strips blank lines and non-doc comment lines from type snippets and caps them at MaxSnippetLines before they are
	// sent to the model. The element itself is never changed.
	OptimizeTypeSnippets bool
	MaxSnippetLines      int
}

// DefaultOptions enables every kind and documents elements whether or not they already have a comment.
func DefaultOptions() Options {
	return Options{
		Types:                true,
		Functions:            true,
		TestFunctions:        true,
		Fields:               true,
		OptimizeTypeSnippets: true,
		MaxSnippetLines:      DefaultMaxSnippetLines,
	}
}

// Collector builds tasks. It is safe for concurrent use.
type Collector struct {
	registry *syntax.Registry
	store    *buffer.Store
	opts     Options
}

func New(registry *syntax.Registry, store *buffer.Store, opts Options) *Collector {
	return &Collector{registry: registry, store: store, opts: opts}
}

// Parse reads path through the store and parses it.
func (c *Collector) Parse(path string) (syntax.File, error) {
	src, err := c.store.Read(path)
	if err != nil {
		return nil, err
	}
	return c.registry.Parse(path, src)
}

// CollectFromElement collects the tasks for the cursor at offset in path. A cursor that cannot be located falls back to the whole file.
func (c *Collector) CollectFromElement(path string, offset int) ([]*task.Task, error) {
	f, err := c.Parse(path)
	if err != nil {
		return nil, err
	}
	res, ok := scope.Locate(f, offset)
	if !ok {
		c.opts.Debug("cursor outside file, collecting whole file", "path", path, "offset", offset)
		res = scope.WholeFile(f)
	}
	return c.Collect(f, res), nil
}

// CollectFromFile collects the tasks of every element of path.
func (c *Collector) CollectFromFile(path string) ([]*task.Task, error) {
	f, err := c.Parse(path)
	if err != nil {
		return nil, err
	}
	return c.Collect(f, scope.WholeFile(f)), nil
}

// Collect expands res within f into tasks in document order.
//
// A single element yields at most one task. A type with expansion yields itself, its functions, its fields, and then each nested type the same
// way. A whole file yields its file-level functions and then each top-level type expanded. Every element passes the per-kind toggle and the
// skip filter on its own.
func (c *Collector) Collect(f syntax.File, res scope.Result) []*task.Task {
	if res.Element == nil {
		return nil
	}
	var tasks []*task.Task
	add := func(n syntax.Node) {
		if t := c.taskFor(f, n); t != nil {
			tasks = append(tasks, t)
		}
	}

	switch {
	case res.Kind == task.KindFile || res.Element.Kind() == syntax.KindFile:
		for _, fn := range f.Children(syntax.KindFunction) {
			add(fn)
		}
		for _, typ := range f.Children(syntax.KindType) {
			c.expandType(typ, add)
		}
	case res.ExpandToContainer && res.Element.Kind() == syntax.KindType:
		c.expandType(res.Element, add)
	default:
		add(res.Element)
	}

	c.opts.Debug("collected tasks", "path", f.Path(), "scope", res.Kind, "expand", res.ExpandToContainer, "count", len(tasks))
	return tasks
}

func (c *Collector) expandType(typ syntax.Node, add func(syntax.Node)) {
	add(typ)
	for _, fn := range typ.Children(syntax.KindFunction) {
		add(fn)
	}
	for _, field := range typ.Children(syntax.KindField) {
		add(field)
	}
	for _, nested := range typ.Children(syntax.KindType) {
		c.expandType(nested, add)
	}
}

// KindOf maps an element to its task kind.
func KindOf(n syntax.Node, lang syntax.Language) (task.Kind, bool) {
	switch n.Kind() {
	case syntax.KindType:
		return task.KindType, true
	case syntax.KindField:
		return task.KindField, true
	case syntax.KindFunction:
		if syntax.IsTestFunction(n, lang) {
			return task.KindTestFunction, true
		}
		return task.KindFunction, true
	}
	return "", false
}

// Enabled reports whether kind's toggle is on.
func (o Options) Enabled(kind task.Kind) bool {
	switch kind {
	case task.KindType:
		return o.Types
	case task.KindFunction:
		return o.Functions
	case task.KindTestFunction:
		return o.TestFunctions
	case task.KindField:
		return o.Fields
	}
	return false
}

// ShouldSkip applies the skip filter to n.
func (o Options) ShouldSkip(n syntax.Node) bool {
	if !o.SkipExisting {
		return false
	}
	_, hasDoc := n.DocComment()
	return hasDoc
}

// ShouldSkipTask re-applies the skip filter to t's element in the current contents of its file. The buffer may have changed since collection, so
// this answer is the authoritative one.
func (c *Collector) ShouldSkipTask(t *task.Task) (bool, error) {
	if !c.opts.SkipExisting {
		return false, nil
	}
	f, err := c.Parse(t.SourcePath)
	if err != nil {
		return false, err
	}
	n, err := f.Resolve(t.Target)
	if err != nil {
		return false, err
	}
	return c.opts.ShouldSkip(n), nil
}

func (c *Collector) taskFor(f syntax.File, n syntax.Node) *task.Task {
	kind, ok := KindOf(n, f.Language())
	if !ok || !c.opts.Enabled(kind) || c.opts.ShouldSkip(n) {
		return nil
	}

	snippet := syntax.Text(f.Source(), syntax.Extent(n))
	t := task.New(syntax.RefOf(f.Path(), n), kind, snippet, f.Language().Name())
	if kind == task.KindType && c.opts.OptimizeTypeSnippets {
		t.PromptSnippet = OptimizeSnippet(f.Language().CommentStyle(), snippet, c.opts.MaxSnippetLines)
	}
	return t
}

// isGenerated reports whether src carries a "Code generated ... DO NOT EDIT." header.
func isGenerated(src []byte) bool {
	return gocode.IsCodeGenerated(src)
}
