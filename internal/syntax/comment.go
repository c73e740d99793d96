package syntax

import (
	"strings"
)

// NormalizeComment makes text a syntactically complete doc comment in style. Block styles get the open and close markers if they are missing
// (a plain "/*" opener is upgraded to the doc opener); a bare single line becomes "/** text */". Line styles get the line prefix on every line
// that lacks it. Surrounding blank lines are dropped.
func NormalizeComment(style CommentStyle, text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.Trim(text, "\n")
	text = strings.TrimRight(text, " \t\n")
	if strings.TrimSpace(text) == "" {
		return ""
	}

	if style.LineBased() {
		trimmed := strings.TrimSpace(text)
		if strings.HasPrefix(trimmed, "/*") && strings.HasSuffix(trimmed, "*/") {
			return trimmed
		}
		lines := strings.Split(text, "\n")
		for i, l := range lines {
			t := strings.TrimSpace(l)
			switch {
			case strings.HasPrefix(t, style.Line):
				lines[i] = t
			case t == "":
				lines[i] = style.Line
			default:
				lines[i] = style.Line + " " + t
			}
		}
		return strings.Join(lines, "\n")
	}

	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "/*") && !strings.Contains(t, "\n") {
		return style.Open + " " + strings.TrimSpace(strings.TrimSuffix(t, style.Close)) + " " + style.Close
	}
	if !strings.HasPrefix(t, style.Open) {
		if strings.HasPrefix(t, "/*") {
			t = style.Open + strings.TrimPrefix(t, "/*")
		} else {
			t = style.Open + "\n" + t
		}
	}
	if !strings.HasSuffix(t, style.Close) || len(t) < len(style.Open)+len(style.Close) {
		t = t + "\n" + style.Close
	}
	return t
}

// FormatBlockComment re-indents a normalized block comment. Interior lines are prefixed with " * " (an existing leading "*" is kept) and the
// closing marker gets its own " */" line when the comment spans several lines.
func FormatBlockComment(style CommentStyle, comment, indent, eol string) string {
	lines := strings.Split(strings.ReplaceAll(comment, "\r\n", "\n"), "\n")
	if len(lines) == 1 {
		return strings.TrimSpace(lines[0])
	}

	out := make([]string, 0, len(lines))
	out = append(out, strings.TrimSpace(lines[0]))
	for i := 1; i < len(lines); i++ {
		t := strings.TrimSpace(lines[i])
		last := i == len(lines)-1
		switch {
		case last && t == style.Close:
			out = append(out, indent+" "+style.Close)
		case t == "":
			out = append(out, indent+" *")
		case strings.HasPrefix(t, "*") && !strings.HasPrefix(t, style.Close):
			out = append(out, indent+" "+t)
		default:
			out = append(out, indent+" * "+t)
		}
	}
	return strings.Join(out, eol)
}

// FormatLineComment re-indents a normalized line comment: every line after the first gets indent.
func FormatLineComment(comment, indent, eol string) string {
	lines := strings.Split(strings.ReplaceAll(comment, "\r\n", "\n"), "\n")
	for i, l := range lines {
		t := strings.TrimSpace(l)
		if i > 0 {
			t = indent + t
		}
		lines[i] = t
	}
	return strings.Join(lines, eol)
}
