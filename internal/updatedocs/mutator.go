// Package updatedocs replaces the doc comment of one element in a source file. The element is found again by its structural reference in the
// current contents, so earlier edits to the same file never invalidate it. The stale comment goes (with the blank lines that gathered above it),
// the new one is inserted above the element's header, and the inserted lines are indented to match the element.
package updatedocs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/codalotl/autodoc/internal/buffer"
	"github.com/codalotl/autodoc/internal/q/health"
	"github.com/codalotl/autodoc/internal/syntax"
	"github.com/codalotl/autodoc/internal/task"
)

// ErrEmptyComment is returned when the comment text is blank after normalization.
var ErrEmptyComment = errors.New("updatedocs: comment is empty")

// Mutator applies generated comments to files through a buffer.Store.
type Mutator struct {
	health.Ctx
	registry *syntax.Registry
	store    *buffer.Store
}

func New(ctx health.Ctx, registry *syntax.Registry, store *buffer.Store) *Mutator {
	return &Mutator{Ctx: ctx, registry: registry, store: store}
}

// Apply replaces the doc comment of t's element with text. The whole read-parse-rewrite sequence runs under the file's exclusive lock; if any step
// before the write fails, the file is untouched.
func (m *Mutator) Apply(t *task.Task, text string) error {
	lang, ok := m.registry.ForPath(t.SourcePath)
	if !ok {
		return fmt.Errorf("updatedocs: %w: %s", syntax.ErrUnsupported, t.SourcePath)
	}

	return m.store.Edit(t.SourcePath, func(src []byte) ([]byte, error) {
		res, err := Rewrite(lang, t.SourcePath, src, t.Target, text)
		if err != nil {
			return nil, err
		}
		if res.FormatErr != nil {
			m.Warn("inserted comment left unformatted", "path", t.SourcePath, "element", t.Target.String(), "err", res.FormatErr)
		}
		return res.Source, nil
	})
}

// Result is the outcome of Rewrite.
type Result struct {
	Source []byte

	// Formatted is false when the reformatted text failed the language's validation and the plain insertion was kept instead. FormatErr says why.
	Formatted bool
	FormatErr error
}

// Rewrite returns src with the doc comment of the element at target replaced by comment. It does not touch the filesystem.
func Rewrite(lang syntax.Language, path string, src []byte, target syntax.Ref, comment string) (Result, error) {
	normalized := syntax.NormalizeComment(lang.CommentStyle(), comment)
	if normalized == "" {
		return Result{}, ErrEmptyComment
	}

	f, err := lang.Parse(path, src)
	if err != nil {
		return Result{}, err
	}
	n, err := f.Resolve(target)
	if err != nil {
		return Result{}, fmt.Errorf("updatedocs: resolve %s: %w", target, err)
	}

	s := string(src)
	eol := dominantEOL(s)

	anchor := n.HeaderSpan().Start
	if n.HeaderSpan().IsZero() {
		anchor = n.Span().Start
	}

	absorbedBlank := false
	if doc, ok := n.DocComment(); ok {
		start, end, blank := widen(s, doc)
		s = s[:start] + s[end:]
		switch {
		case anchor >= end:
			anchor -= end - start
		case anchor > start:
			anchor = start
		}
		absorbedBlank = blank
	}

	plain := s[:anchor] + strings.ReplaceAll(normalized, "\n", eol) + eol + s[anchor:]

	lineStart := strings.LastIndexByte(s[:anchor], '\n') + 1
	indent := leadingSpace(s[lineStart:])

	var b strings.Builder
	if strings.TrimSpace(s[lineStart:anchor]) == "" {
		b.WriteString(s[:lineStart])
		if absorbedBlank && lineStart > 0 {
			b.WriteString(eol)
		}
	} else {
		b.WriteString(strings.TrimRight(s[:anchor], " \t"))
		b.WriteString(eol)
	}
	b.WriteString(indent)
	b.WriteString(lang.FormatComment(normalized, indent, eol))
	b.WriteString(eol)
	b.WriteString(indent)
	b.WriteString(s[anchor:])
	formatted := b.String()

	if err := lang.Validate([]byte(formatted)); err != nil && lang.Validate(src) == nil {
		return Result{Source: []byte(plain), FormatErr: err}, nil
	}
	return Result{Source: []byte(formatted), Formatted: true}, nil
}

// widen grows a doc comment range to what should be deleted with it: the line terminator after it and, when nothing but whitespace precedes it on
// its line, that whitespace plus every whitespace-only line above. blank reports whether any such line was absorbed.
func widen(s string, doc syntax.Span) (start, end int, blank bool) {
	start, end = doc.Start, doc.End

	switch {
	case strings.HasPrefix(s[end:], "\r\n"):
		end += 2
	case strings.HasPrefix(s[end:], "\n"):
		end++
	}

	for start > 0 && (s[start-1] == ' ' || s[start-1] == '\t') {
		start--
	}
	if start > 0 && s[start-1] != '\n' {
		// Something precedes the comment on its line; only the horizontal whitespace goes.
		return start, end, false
	}

	for start > 0 {
		prevStart := strings.LastIndexByte(s[:start-1], '\n') + 1
		if strings.TrimSpace(s[prevStart:start-1]) != "" {
			break
		}
		start = prevStart
		blank = true
	}
	return start, end, blank
}

func dominantEOL(s string) string {
	crlf := strings.Count(s, "\r\n")
	if crlf > 0 && crlf >= strings.Count(s, "\n")-crlf {
		return "\r\n"
	}
	return "\n"
}

func leadingSpace(line string) string {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return line[:i]
}
