package progressui

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codalotl/autodoc/internal/docubot"
)

var (
	_ Sink = (*Lines)(nil)
	_ Sink = (*Bar)(nil)
)

func TestLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewLines(&buf, 0)
	l.Report(0.5, "src/UserService.java", "getUserName")
	l.Report(1, "src/UserService.java", "")
	l.Notify("Documentation failed for f", "Request rate exceeded. Try again later.", docubot.SeverityWarning)
	l.Notify("Documentation complete", "2 completed, 0 failed, 0 skipped", docubot.SeverityInfo)

	assert.Equal(t, strings.Join([]string{
		"[ 50%] src/UserService.java getUserName",
		"[100%] src/UserService.java",
		"warning: Documentation failed for f: Request rate exceeded. Try again later.",
		"Documentation complete: 2 completed, 0 failed, 0 skipped",
	}, "\n")+"\n", buf.String())

	assert.False(t, l.IsCancelled())
	l.Cancel()
	assert.True(t, l.IsCancelled())
	assert.NoError(t, l.Close())
}

func TestLinesTruncate(t *testing.T) {
	var buf bytes.Buffer
	l := NewLines(&buf, 20)
	l.Report(0.25, "a/very/long/path/to/Some.java", "method")
	assert.Equal(t, "[ 25%] a/very/long/…\n", buf.String())
	assert.LessOrEqual(t, runewidth.StringWidth(strings.TrimSuffix(buf.String(), "\n")), 20)
}

func TestTruncateWide(t *testing.T) {
	assert.Equal(t, "日本…", truncate("日本語のファイル", 6))
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "anything", truncate("anything", 0))
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(model)
	require.True(t, ok)
	return nm, cmd
}

func TestModel(t *testing.T) {
	cancelled := 0
	m := newModel(func() { cancelled++ })

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 20})
	assert.Equal(t, 60, m.bar.Width)

	m, _ = update(t, m, reportMsg{fraction: 0.5, primary: "A.java", secondary: "run"})
	view := m.View()
	assert.Contains(t, view, "50%")
	assert.Contains(t, view, "A.java · run")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Nil(t, cmd)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, cancelled)
	assert.Contains(t, m.View(), "stopping after the current element")

	_, cmd = update(t, m, noteMsg{text: "hello"})
	assert.NotNil(t, cmd)

	m, cmd = update(t, m, doneMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, m.View())
}

func TestFormatNote(t *testing.T) {
	assert.Equal(t, "error: Documentation not started: configuration error: no key", formatNote("Documentation not started", "configuration error: no key", docubot.SeverityError))
	assert.Equal(t, "Done", formatNote("Done", "", docubot.SeverityInfo))
}
