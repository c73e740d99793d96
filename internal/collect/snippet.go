package collect

import (
	"fmt"
	"strings"

	"github.com/codalotl/autodoc/internal/syntax"
)

// OptimizeSnippet shrinks a type snippet for the prompt. Blank lines go, as do line comments unless the language writes its docs as line
// comments. If more than maxLines remain, the rest is replaced by one "<line comment> ... N more lines truncated" marker. maxLines <= 0 disables
// truncation.
func OptimizeSnippet(style syntax.CommentStyle, snippet string, maxLines int) string {
	lines := strings.Split(strings.ReplaceAll(snippet, "\r\n", "\n"), "\n")

	kept := lines[:0]
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if t == "" {
			continue
		}
		if !style.LineBased() && strings.HasPrefix(t, style.Line) {
			continue
		}
		kept = append(kept, l)
	}

	if maxLines > 0 && len(kept) > maxLines {
		dropped := len(kept) - maxLines
		kept = append(kept[:maxLines], fmt.Sprintf("%s ... %d more lines truncated", style.Line, dropped))
	}
	return strings.Join(kept, "\n")
}
