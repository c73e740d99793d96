package task

import (
	"testing"

	"github.com/codalotl/autodoc/internal/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTask() *Task {
	ref := syntax.Ref{Path: "a/User.java", Key: []syntax.Segment{{Kind: syntax.KindType, Name: "User"}, {Kind: syntax.KindFunction, Name: "getName"}}}
	return New(ref, KindFunction, "String getName() {}", "Java")
}

func TestNew(t *testing.T) {
	tk := newTask()
	assert.Equal(t, StatusPending, tk.Status())
	assert.Equal(t, "a/User.java", tk.SourcePath)
	assert.Equal(t, "getName", tk.Name())
	assert.Equal(t, "String getName() {}", tk.Snippet())

	tk.PromptSnippet = "short"
	assert.Equal(t, "short", tk.Snippet())
}

func TestTransitions(t *testing.T) {
	tk := newTask()
	require.NoError(t, tk.Start())
	require.NoError(t, tk.Complete("/** Gets the name. */"))
	assert.Equal(t, StatusCompleted, tk.Status())
	assert.Equal(t, "/** Gets the name. */", tk.ResultText())
	assert.Empty(t, tk.ErrorMessage())

	assert.ErrorIs(t, tk.Start(), ErrInvalidTransition)
	assert.ErrorIs(t, tk.Fail("x"), ErrInvalidTransition)
	assert.Equal(t, StatusCompleted, tk.Status())

	tk = newTask()
	assert.ErrorIs(t, tk.Complete("x"), ErrInvalidTransition, "pending cannot complete")
	assert.ErrorIs(t, tk.Skip(""), ErrInvalidTransition)
	require.NoError(t, tk.Start())
	assert.ErrorIs(t, tk.Start(), ErrInvalidTransition)
	require.NoError(t, tk.Fail("boom"))
	assert.Equal(t, "boom", tk.ErrorMessage())
	assert.Empty(t, tk.ResultText())

	tk = newTask()
	require.NoError(t, tk.Start())
	require.NoError(t, tk.Skip("already documented"))
	assert.Equal(t, StatusSkipped, tk.Status())
}

func TestStatistics(t *testing.T) {
	var s Statistics
	for _, finish := range []func(*Task) error{
		func(tk *Task) error { return tk.Complete("c") },
		func(tk *Task) error { return tk.Complete("c") },
		func(tk *Task) error { return tk.Fail("f") },
		func(tk *Task) error { return tk.Skip("") },
	} {
		tk := newTask()
		require.NoError(t, tk.Start())
		require.NoError(t, finish(tk))
		s.Record(tk)
	}
	s.Record(newTask()) // pending tasks are not counted

	assert.Equal(t, Statistics{Completed: 2, Failed: 1, Skipped: 1}, s)
	assert.Equal(t, 4, s.Total())
	assert.Equal(t, "2 completed, 1 failed, 1 skipped", s.String())
}
