package llmcomplete

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var thinkBlockRE = regexp.MustCompile(`(?s)<think>.*?</think>`)

const thinkClose = "</think>"

// CleanResponse turns raw model output into comment text:
//   - every <think>...</think> block is removed; a lone </think> removes everything before it.
//   - if what remains starts with a markdown code fence, the last fenced block's content is used.
//   - surrounding whitespace is trimmed.
func CleanResponse(raw string) string {
	s := thinkBlockRE.ReplaceAllString(raw, "")
	if i := strings.LastIndex(s, thinkClose); i >= 0 {
		s = s[i+len(thinkClose):]
	}
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") || strings.HasPrefix(s, "~~~") {
		if inner, ok := lastFencedBlock(s); ok {
			s = strings.TrimSpace(inner)
		}
	}
	return s
}

// lastFencedBlock returns the content of the last fenced code block in markdown src.
func lastFencedBlock(src string) (string, bool) {
	b := []byte(src)
	doc := goldmark.New().Parser().Parse(text.NewReader(b))

	var last *ast.FencedCodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fcb, ok := n.(*ast.FencedCodeBlock); ok {
			last = fcb
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if last == nil {
		return "", false
	}

	var sb strings.Builder
	lines := last.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(b))
	}
	return sb.String(), true
}
