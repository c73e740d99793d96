// Package diff computes line diffs between the old and new contents of a file and renders them as unified diffs. autodoc uses it to show what a
// dry run would have written.
//
//	d := diff.Lines(oldText, newText)
//	fmt.Print(d.Unified("a/Foo.java", "b/Foo.java", 3, false))
//
// Invariants:
//   - concat(Hunks.OldText) == Diff.OldText
//   - concat(Hunks.NewText) == Diff.NewText
//
// Newlines: '\n' is the line separator. A "\r\n" line keeps its '\r' as part of the line text. The last line may lack a trailing '\n'.
package diff
