package docubot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/codalotl/autodoc/internal/llmcomplete"
	"github.com/codalotl/autodoc/internal/metrics"
	"github.com/codalotl/autodoc/internal/q/health"
	"github.com/codalotl/autodoc/internal/task"
)

// ErrAlreadyStarted is returned by a second call to Run.
var ErrAlreadyStarted = errors.New("docubot: orchestrator already started")

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Notifier shows a message to the user (a terminal line, a desktop notification).
type Notifier interface {
	Notify(title, body string, severity Severity)
}

// Progress receives progress after every task and tells the run whether the user asked to stop.
type Progress interface {
	Report(fraction float64, primary, secondary string)
	IsCancelled() bool
}

// Generator produces comment text. *llmcomplete.Client and *llmcomplete.Mock implement it.
type Generator interface {
	CheckConfig() error
	Generate(ctx context.Context, req llmcomplete.Request) (string, error)
}

// Mutator writes comment text into a task's file. *updatedocs.Mutator implements it.
type Mutator interface {
	Apply(t *task.Task, text string) error
}

// SkipChecker decides, against the current file contents, whether a task's element no longer needs a comment. *collect.Collector implements it.
type SkipChecker interface {
	ShouldSkipTask(t *task.Task) (bool, error)
}

type State int32

const (
	StateNotStarted State = iota
	StateRunning
	StateCompleted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return "not_started"
	}
}

type Options struct {
	health.Ctx

	Generator Generator   // required
	Mutator   Mutator     // required
	Skipper   SkipChecker // optional; nil never skips
	Notifier  Notifier    // optional
	Progress  Progress    // optional
	Metrics   *metrics.Metrics

	// CommentLanguage is the natural language comments are written in. Empty means English.
	CommentLanguage string
}

// Orchestrator runs one batch of tasks. It is single-use.
type Orchestrator struct {
	opts  Options
	state atomic.Int32
	runID string
}

func New(opts Options) *Orchestrator {
	return &Orchestrator{opts: opts, runID: uuid.NewString()}
}

func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// RunID identifies this run in logs.
func (o *Orchestrator) RunID() string {
	return o.runID
}

// Run processes tasks in order and returns the statistics of the tasks that reached a terminal status.
//
// The generator's configuration is checked first; if it fails, the user is notified once and the error is returned with every task still pending.
// Otherwise errors are per task: the task is marked Failed and the run continues, so Run returns a nil error. After each task, if ctx is done or
// Progress reports cancellation, the run stops with the remaining tasks left pending. Work inside a task is not interrupted by ctx.
func (o *Orchestrator) Run(ctx context.Context, tasks []*task.Task) (task.Statistics, error) {
	var stats task.Statistics
	if !o.state.CompareAndSwap(int32(StateNotStarted), int32(StateRunning)) {
		return stats, ErrAlreadyStarted
	}
	log := o.opts.Ctx.With("run_id", o.runID)

	if err := o.opts.Generator.CheckConfig(); err != nil {
		msg := llmcomplete.UserMessage(err)
		o.notify("Documentation not started", msg, SeverityError)
		o.state.Store(int32(StateCompleted))
		o.opts.Metrics.RecordRun("config_error")
		return stats, log.LogErr(health.WrapHuman(msg, "configuration check failed", err))
	}

	log.Log("run started", "tasks", len(tasks))
	workCtx := context.WithoutCancel(ctx)
	notifiedFailure := false
	final := StateCompleted

	for i, t := range tasks {
		start := time.Now()
		o.runTask(workCtx, log, t)
		stats.Record(t)
		if t.Status().IsTerminal() {
			o.opts.Metrics.RecordTask(string(t.Kind), string(t.Status()), time.Since(start))
		}

		if t.Status() == task.StatusFailed && !notifiedFailure {
			notifiedFailure = true
			o.notify("Documentation failed for "+t.Name(), t.ErrorMessage(), SeverityWarning)
		}

		o.report(float64(i+1)/float64(len(tasks)), t.SourcePath, t.Name())

		if i < len(tasks)-1 && o.cancelled(ctx) {
			final = StateCancelled
			log.Log("run cancelled", "done", i+1, "remaining", len(tasks)-i-1)
			break
		}
	}

	o.state.Store(int32(final))
	o.opts.Metrics.RecordRun(final.String())
	log.Log("run finished", "state", final.String(), "stats", stats.String())

	title := "Documentation complete"
	if final == StateCancelled {
		title = "Documentation cancelled"
	}
	severity := SeverityInfo
	if stats.Failed > 0 {
		severity = SeverityWarning
	}
	o.notify(title, stats.String(), severity)

	return stats, nil
}

// runTask drives t to a terminal status. Every error ends up in t.ErrorMessage.
func (o *Orchestrator) runTask(ctx context.Context, log health.Ctx, t *task.Task) {
	if err := t.Start(); err != nil {
		log.LogErr(err, "task", t.String())
		return
	}
	log = log.With("task", t.String())

	if o.opts.Skipper != nil {
		skip, err := o.opts.Skipper.ShouldSkipTask(t)
		if err != nil {
			o.fail(log, t, err)
			return
		}
		if skip {
			_ = t.Skip("already documented")
			log.Debug("task skipped", "reason", "already documented")
			return
		}
	}

	text, err := o.opts.Generator.Generate(ctx, llmcomplete.Request{
		Snippet:         t.Snippet(),
		Kind:            t.Kind,
		Language:        t.Language,
		CommentLanguage: o.opts.CommentLanguage,
	})
	if err != nil {
		o.fail(log, t, err)
		return
	}
	if strings.TrimSpace(text) == "" {
		o.fail(log, t, llmcomplete.ErrEmptyGeneration)
		return
	}

	if err := o.opts.Mutator.Apply(t, text); err != nil {
		o.fail(log, t, fmt.Errorf("apply comment: %w", err))
		return
	}
	_ = t.Complete(text)
	log.Debug("task completed", "multiline", text)
}

func (o *Orchestrator) fail(log health.Ctx, t *task.Task, err error) {
	msg := llmcomplete.UserMessage(err)
	_ = t.Fail(msg)
	log.LogErr(health.WrapHuman(msg, "task failed", err))
}

func (o *Orchestrator) cancelled(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return o.opts.Progress != nil && o.opts.Progress.IsCancelled()
}

func (o *Orchestrator) notify(title, body string, severity Severity) {
	if o.opts.Notifier != nil {
		o.opts.Notifier.Notify(title, body, severity)
	}
}

func (o *Orchestrator) report(fraction float64, primary, secondary string) {
	if o.opts.Progress != nil {
		o.opts.Progress.Report(fraction, primary, secondary)
	}
}
