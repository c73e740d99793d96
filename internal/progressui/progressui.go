// Package progressui shows the progress of a documentation run in a terminal. Bar draws a bubbletea progress bar and turns ctrl+c into a
// cooperative cancellation request; Lines prints one plain line per finished element for pipes, CI logs, and --no-progress. Both are docubot
// Progress and Notifier sinks.
package progressui

import (
	"os"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/codalotl/autodoc/internal/docubot"
)

// Sink is a docubot.Progress and docubot.Notifier that must be closed when the run ends.
type Sink interface {
	docubot.Progress
	docubot.Notifier

	// Cancel asks the run to stop after the current element.
	Cancel()
	Close() error
}

const defaultWidth = 80

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the column count of the terminal behind f, or 80.
func Width(f *os.File) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// truncate cuts s to at most width display columns, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func severityPrefix(s docubot.Severity) string {
	switch s {
	case docubot.SeverityWarning:
		return "warning: "
	case docubot.SeverityError:
		return "error: "
	default:
		return ""
	}
}

func formatNote(title, body string, severity docubot.Severity) string {
	msg := severityPrefix(severity) + title
	if body != "" {
		msg += ": " + body
	}
	return msg
}
