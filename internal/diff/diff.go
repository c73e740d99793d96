package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is an operation from old text to new text.
type Op int

// Operations from old text to new text.
const (
	OpEqual Op = iota
	OpInsert
	OpDelete
	OpReplace
)

// Diff is a diff from old text to new text.
type Diff struct {
	OldText string // Entire original text.
	NewText string // Entire revised text.
	Hunks   []Hunk // Ordered hunks that cover the whole diff and reconstruct OldText/NewText.
}

// Hunk is a contiguous group of lines. Each line includes its '\n', if it has one.
type Hunk struct {
	Op       Op
	OldLines []string // empty for inserts
	NewLines []string // empty for deletes; same as OldLines for OpEqual
}

func (h Hunk) OldText() string { return strings.Join(h.OldLines, "") }
func (h Hunk) NewText() string { return strings.Join(h.NewLines, "") }

// Lines diffs oldText to newText line by line.
func Lines(oldText, newText string) Diff {
	dmp := diffmatchpatch.New()
	rOld, rNew, lineArray := dmp.DiffLinesToRunes(oldText, newText)
	lineDiffs := dmp.DiffCleanupMerge(dmp.DiffMainRunes(rOld, rNew, false))

	// Decode rune-string back to slice of original lines using the lineArray mapping.
	decode := func(s string) []string {
		if s == "" {
			return nil
		}
		out := make([]string, 0, len(s))
		for _, r := range s {
			idx := int(r)
			if idx >= 0 && idx < len(lineArray) {
				out = append(out, lineArray[idx])
			}
		}
		return out
	}

	var hunks []Hunk
	var dels, ins []string
	flush := func() {
		if len(dels) == 0 && len(ins) == 0 {
			return
		}
		op := OpInsert
		switch {
		case len(dels) > 0 && len(ins) > 0:
			op = OpReplace
		case len(dels) > 0:
			op = OpDelete
		}
		hunks = append(hunks, Hunk{Op: op, OldLines: dels, NewLines: ins})
		dels, ins = nil, nil
	}

	for _, d := range lineDiffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			if eq := decode(d.Text); len(eq) > 0 {
				hunks = append(hunks, Hunk{Op: OpEqual, OldLines: eq, NewLines: eq})
			}
		case diffmatchpatch.DiffDelete:
			dels = append(dels, decode(d.Text)...)
		case diffmatchpatch.DiffInsert:
			ins = append(ins, decode(d.Text)...)
		}
	}
	flush()

	return Diff{OldText: oldText, NewText: newText, Hunks: hunks}
}

// Changed reports whether the texts differ.
func (d Diff) Changed() bool {
	for _, h := range d.Hunks {
		if h.Op != OpEqual {
			return true
		}
	}
	return false
}

// Counts returns the number of inserted and deleted lines.
func (d Diff) Counts() (added, removed int) {
	for _, h := range d.Hunks {
		if h.Op == OpEqual {
			continue
		}
		added += len(h.NewLines)
		removed += len(h.OldLines)
	}
	return added, removed
}
