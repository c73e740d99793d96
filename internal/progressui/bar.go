package progressui

import (
	"io"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/codalotl/autodoc/internal/docubot"
)

type reportMsg struct {
	fraction  float64
	primary   string
	secondary string
}

type noteMsg struct {
	text string
}

type doneMsg struct{}

// Bar runs a bubbletea program on its own goroutine. The run talks to it only through Send, so Report and Notify never block on rendering.
type Bar struct {
	program   *tea.Program
	cancelled atomic.Bool
	done      chan struct{}
	err       error
}

// NewBar starts the program reading keys from in and drawing to out.
func NewBar(in io.Reader, out io.Writer) *Bar {
	b := &Bar{done: make(chan struct{})}
	m := newModel(b.Cancel)
	b.program = tea.NewProgram(m, tea.WithInput(in), tea.WithOutput(out))
	go func() {
		defer close(b.done)
		_, b.err = b.program.Run()
	}()
	return b
}

func (b *Bar) Report(fraction float64, primary, secondary string) {
	b.program.Send(reportMsg{fraction: fraction, primary: primary, secondary: secondary})
}

func (b *Bar) Notify(title, body string, severity docubot.Severity) {
	b.program.Send(noteMsg{text: formatNote(title, body, severity)})
}

func (b *Bar) IsCancelled() bool {
	return b.cancelled.Load()
}

func (b *Bar) Cancel() {
	b.cancelled.Store(true)
}

// Close stops the program and waits for it to restore the terminal.
func (b *Bar) Close() error {
	b.program.Send(doneMsg{})
	<-b.done
	return b.err
}

type model struct {
	bar        progress.Model
	percent    float64
	primary    string
	secondary  string
	width      int
	cancel     func()
	cancelling bool
	done       bool
}

func newModel(cancel func()) model {
	return model{
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		width:  defaultWidth,
		cancel: cancel,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			if !m.cancelling {
				m.cancelling = true
				m.cancel()
			}
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = max(10, min(msg.Width-8, 60))
		return m, nil
	case reportMsg:
		m.percent = msg.fraction
		m.primary = msg.primary
		m.secondary = msg.secondary
		return m, nil
	case noteMsg:
		return m, tea.Println(truncate(msg.text, m.width))
	case doneMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	if m.done {
		return ""
	}
	s := m.bar.ViewAs(m.percent)
	if m.primary != "" {
		status := m.primary
		if m.secondary != "" {
			status += " · " + m.secondary
		}
		s += "\n" + truncate(status, m.width)
	}
	if m.cancelling {
		s += "\nstopping after the current element…"
	}
	return s + "\n"
}
