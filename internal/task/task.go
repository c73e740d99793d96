// Package task defines the unit of work of a documentation run: one element of one file that needs a doc comment, plus its status as the run
// progresses.
package task

import (
	"errors"
	"fmt"

	"github.com/codalotl/autodoc/internal/syntax"
)

// Kind is the kind of element a task documents.
type Kind string

const (
	KindType         Kind = "type"
	KindFunction     Kind = "function"
	KindTestFunction Kind = "test_function"
	KindField        Kind = "field"

	// KindFile is a scope kind only (the whole file). No task ever has it.
	KindFile Kind = "file"
)

// Kinds lists the task kinds in a stable order.
var Kinds = []Kind{KindType, KindFunction, KindTestFunction, KindField}

// Status represents the current state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusSkipped    Status = "skipped"
)

// IsTerminal returns true if no further state transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusSkipped
}

// ErrInvalidTransition is returned when a status change would move a task backwards or out of a terminal state.
var ErrInvalidTransition = errors.New("invalid task status transition")

// Task asks for one doc comment. Everything except the status and its result or error message is fixed at construction.
type Task struct {
	// Target locates the element. It is resolved again against the current file contents when the comment is applied.
	Target syntax.Ref

	// SourceSnippet is the element's text at collection time, including any existing doc comment.
	SourceSnippet string

	// PromptSnippet, when set, is sent to the model instead of SourceSnippet (ex: a type with blank lines stripped and its body truncated).
	PromptSnippet string

	Kind       Kind
	SourcePath string

	// Language is the source language name (ex: "Go", "Java").
	Language string

	status       Status
	resultText   string
	errorMessage string
}

// New returns a pending task.
func New(target syntax.Ref, kind Kind, snippet, language string) *Task {
	return &Task{
		Target:        target,
		SourceSnippet: snippet,
		Kind:          kind,
		SourcePath:    target.Path,
		Language:      language,
		status:        StatusPending,
	}
}

// Name is the name of the documented element.
func (t *Task) Name() string {
	return t.Target.Name()
}

// Snippet returns the text to send to the model.
func (t *Task) Snippet() string {
	if t.PromptSnippet != "" {
		return t.PromptSnippet
	}
	return t.SourceSnippet
}

func (t *Task) Status() Status {
	if t.status == "" {
		return StatusPending
	}
	return t.status
}

// ResultText is the inserted comment of a completed task.
func (t *Task) ResultText() string {
	return t.resultText
}

// ErrorMessage is the user-facing reason of a failed or skipped task.
func (t *Task) ErrorMessage() string {
	return t.errorMessage
}

// Start moves a pending task to in-progress.
func (t *Task) Start() error {
	return t.transition(StatusInProgress, "", "")
}

// Complete records the inserted comment.
func (t *Task) Complete(resultText string) error {
	return t.transition(StatusCompleted, resultText, "")
}

// Fail records why the task failed.
func (t *Task) Fail(message string) error {
	return t.transition(StatusFailed, "", message)
}

// Skip marks the task as not needing work. reason may be empty.
func (t *Task) Skip(reason string) error {
	return t.transition(StatusSkipped, "", reason)
}

func (t *Task) transition(to Status, result, message string) error {
	from := t.Status()
	ok := false
	switch from {
	case StatusPending:
		ok = to == StatusInProgress
	case StatusInProgress:
		ok = to.IsTerminal()
	}
	if !ok {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	t.status = to
	t.resultText = result
	t.errorMessage = message
	return nil
}

func (t *Task) String() string {
	return fmt.Sprintf("%s %s (%s)", t.Kind, t.Target, t.Status())
}

// Statistics counts task outcomes of one run.
type Statistics struct {
	Completed int
	Failed    int
	Skipped   int
}

// Total is the number of tasks that reached a terminal status.
func (s Statistics) Total() int {
	return s.Completed + s.Failed + s.Skipped
}

// Record counts t if it is in a terminal status.
func (s *Statistics) Record(t *Task) {
	switch t.Status() {
	case StatusCompleted:
		s.Completed++
	case StatusFailed:
		s.Failed++
	case StatusSkipped:
		s.Skipped++
	}
}

func (s Statistics) String() string {
	return fmt.Sprintf("%d completed, %d failed, %d skipped", s.Completed, s.Failed, s.Skipped)
}
