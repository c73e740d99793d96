package progressui

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/codalotl/autodoc/internal/docubot"
)

// Lines writes one line per report and per notification.
type Lines struct {
	mu        sync.Mutex
	w         io.Writer
	width     int
	cancelled atomic.Bool
}

// NewLines writes to w. Lines longer than width columns are truncated; width <= 0 disables truncation.
func NewLines(w io.Writer, width int) *Lines {
	return &Lines{w: w, width: width}
}

func (l *Lines) Report(fraction float64, primary, secondary string) {
	line := fmt.Sprintf("[%3d%%] %s", int(fraction*100+0.5), primary)
	if secondary != "" {
		line += " " + secondary
	}
	l.println(line)
}

func (l *Lines) Notify(title, body string, severity docubot.Severity) {
	l.println(formatNote(title, body, severity))
}

func (l *Lines) IsCancelled() bool {
	return l.cancelled.Load()
}

func (l *Lines) Cancel() {
	l.cancelled.Store(true)
}

func (l *Lines) Close() error {
	return nil
}

func (l *Lines) println(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, truncate(s, l.width))
}
