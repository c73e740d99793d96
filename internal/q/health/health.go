// Package health carries errors that know how to log themselves. A HealthErr keeps slog-style attributes next to its message so the same value can be returned
// up the stack and logged once, with structure, wherever it is finally handled. HumanErr adds a message meant for end users (notifications, CLI output) on top of
// the log-oriented one.
package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
)

// HealthErr is an error with a log-oriented message, optional slog attributes, and an optional wrapped cause.
type HealthErr struct {
	Message string
	wrapped error
	attrs   []any
}

// Error serializes the message, attributes, and wrapped cause. Ex: `apply failed[path=a.go] via parse error`.
func (e *HealthErr) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)

	if len(e.attrs) > 0 {
		b.WriteString("[")
		writeAttrs(&b, e.attrs)
		b.WriteString("]")
	}

	if e.wrapped != nil {
		b.WriteString(" via ")
		b.WriteString(e.wrapped.Error())
	}

	return b.String()
}

func (e *HealthErr) Unwrap() error {
	return e.wrapped
}

// Attrs returns the attributes attached to e. Callers must not modify the result.
func (e *HealthErr) Attrs() []any {
	return e.attrs
}

// NewErr returns a new, unlogged error. args follow slog's conventions (key/value pairs or slog.Attr).
func NewErr(msg string, args ...any) error {
	return &HealthErr{Message: msg, attrs: args}
}

// Wrap returns a new error that wraps `wrapped`. A nil wrapped error is replaced by a placeholder so the mistake is visible in logs instead of silently producing
// an error that wraps nothing.
func Wrap(msg string, wrapped error, args ...any) error {
	if wrapped == nil {
		wrapped = errors.New("health.Wrap called with a nil error")
	}
	return &HealthErr{Message: msg, wrapped: wrapped, attrs: args}
}

// LogNewErr creates a new error with msg and args, logs it, and returns it.
func LogNewErr(logger *slog.Logger, msg string, args ...any) error {
	return LogErr(logger, NewErr(msg, args...))
}

// LogWrappedErr wraps `wrapped` with msg and args, logs the result, and returns it.
func LogWrappedErr(logger *slog.Logger, msg string, wrapped error, args ...any) error {
	return LogErr(logger, Wrap(msg, wrapped, args...))
}

// LogErr logs err at error level (when both logger and err are non-nil) and returns err unchanged:
//
//	return health.LogErr(logger, health.NewErr("apply failed", "path", p), "task", id)
//
// HealthErr and HumanErr values are logged with their own message and attributes first, then a "via" attribute for the wrapped cause, then args. Other errors
// are logged as err.Error() followed by args.
func LogErr(logger *slog.Logger, err error, args ...any) error {
	if logger == nil || err == nil {
		return err
	}

	var h *HealthErr
	switch e := err.(type) {
	case *HumanErr:
		h = &e.HealthErr
	case *HealthErr:
		h = e
	default:
		logger.Error(err.Error(), args...)
		return err
	}

	allArgs := make([]any, 0, len(h.attrs)+len(args)+1)
	allArgs = append(allArgs, h.attrs...)
	if h.wrapped != nil {
		allArgs = append(allArgs, slog.String("via", h.wrapped.Error()))
	}
	allArgs = append(allArgs, args...)

	logger.Error(h.Message, allArgs...)
	return err
}

// writeAttrs writes attrs to b in the key=value format of slog's text handler (ex: `num=3 str="hi"`).
func writeAttrs(b *strings.Builder, attrs []any) {
	if len(attrs) == 0 {
		return
	}

	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey || a.Key == slog.MessageKey {
				return slog.Attr{}
			}
			return a
		},
	}

	logger := slog.New(slog.NewTextHandler(&noNewlineWriter{w: b}, opts))
	logger.Log(context.Background(), slog.LevelDebug, "", attrs...)
}

// noNewlineWriter drops the single trailing newline slog's text handler writes.
type noNewlineWriter struct {
	w io.Writer
}

func (n *noNewlineWriter) Write(p []byte) (int, error) {
	if len(p) > 0 && p[len(p)-1] == '\n' {
		written, err := n.w.Write(p[:len(p)-1])
		if err == nil {
			return len(p), nil
		}
		return written, err
	}
	return n.w.Write(p)
}
