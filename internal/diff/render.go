package diff

import (
	"fmt"
	"strings"
)

const (
	colorReset = "\x1b[0m"
	colorRed   = "\x1b[31m"
	colorGreen = "\x1b[32m"
	colorCyan  = "\x1b[36m"
	colorBold  = "\x1b[1m"
)

// row is one rendered line. oldBefore/newBefore count the lines of each side that precede it.
type row struct {
	op        byte // ' ', '-', '+'
	text      string
	oldBefore int
	newBefore int
}

func (d Diff) rows() []row {
	var rows []row
	oldN, newN := 0, 0
	add := func(op byte, text string) {
		rows = append(rows, row{op: op, text: text, oldBefore: oldN, newBefore: newN})
		if op != '+' {
			oldN++
		}
		if op != '-' {
			newN++
		}
	}
	for _, h := range d.Hunks {
		if h.Op == OpEqual {
			for _, l := range h.OldLines {
				add(' ', l)
			}
			continue
		}
		for _, l := range h.OldLines {
			add('-', l)
		}
		for _, l := range h.NewLines {
			add('+', l)
		}
	}
	return rows
}

// Unified renders d as a unified diff with contextSize lines of context around each change. It returns "" when nothing changed. With color,
// headers and changed lines carry ANSI colors.
func (d Diff) Unified(fromFilename, toFilename string, contextSize int, color bool) string {
	if !d.Changed() {
		return ""
	}
	if contextSize < 0 {
		contextSize = 0
	}
	paint := func(c, s string) string {
		if !color {
			return s
		}
		return c + s + colorReset
	}

	rows := d.rows()
	var b strings.Builder
	b.WriteString(paint(colorBold, "--- "+fromFilename) + "\n")
	b.WriteString(paint(colorBold, "+++ "+toFilename) + "\n")

	for start := 0; start < len(rows); {
		// Find the next change.
		first := start
		for first < len(rows) && rows[first].op == ' ' {
			first++
		}
		if first == len(rows) {
			break
		}

		// Extend the group while the gap of context between changes is at most 2*contextSize.
		last := first
		for i := first + 1; i < len(rows); i++ {
			if rows[i].op == ' ' {
				continue
			}
			if i-last-1 > 2*contextSize {
				break
			}
			last = i
		}

		lo := max(first-contextSize, start)
		hi := min(last+contextSize, len(rows)-1)
		group := rows[lo : hi+1]

		oldCount, newCount := 0, 0
		for _, r := range group {
			if r.op != '+' {
				oldCount++
			}
			if r.op != '-' {
				newCount++
			}
		}
		b.WriteString(paint(colorCyan, fmt.Sprintf("@@ -%s +%s @@", rangeSpec(group[0].oldBefore, oldCount), rangeSpec(group[0].newBefore, newCount))) + "\n")

		for _, r := range group {
			line := strings.TrimSuffix(r.text, "\n")
			switch r.op {
			case '-':
				b.WriteString(paint(colorRed, "-"+line))
			case '+':
				b.WriteString(paint(colorGreen, "+"+line))
			default:
				b.WriteString(" " + line)
			}
			b.WriteString("\n")
			if !strings.HasSuffix(r.text, "\n") {
				b.WriteString("\\ No newline at end of file\n")
			}
		}
		start = hi + 1
	}
	return b.String()
}

// rangeSpec formats a unified-diff range. An empty range is reported at the line before it.
func rangeSpec(before, count int) string {
	startLine := before + 1
	if count == 0 {
		startLine = before
	}
	if count == 1 {
		return fmt.Sprintf("%d", startLine)
	}
	return fmt.Sprintf("%d,%d", startLine, count)
}
