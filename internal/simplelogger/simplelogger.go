// Package simplelogger builds the process-wide *slog.Logger. Logging is off unless AUTODOC_LOG_FILE names a writable file or verbose output is requested.
package simplelogger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
)

// EnvLogFile names the environment variable holding the log file path.
const EnvLogFile = "AUTODOC_LOG_FILE"

type Options struct {
	Verbose bool      // also log at debug level to Stderr
	Stderr  io.Writer // defaults to os.Stderr
}

// New returns a logger and a func that closes any file it opened. Records go to the file named by AUTODOC_LOG_FILE (appending, debug level) and, when
// opts.Verbose, to opts.Stderr. If the file can't be opened it is silently skipped. With no destinations, the logger discards everything.
func New(opts Options) (*slog.Logger, func() error) {
	var handlers []slog.Handler
	closeFn := func() error { return nil }

	if path := os.Getenv(EnvLogFile); path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err == nil {
			handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
			closeFn = f.Close
		}
	}

	if opts.Verbose {
		w := opts.Stderr
		if w == nil {
			w = os.Stderr
		}
		handlers = append(handlers, slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	switch len(handlers) {
	case 0:
		return slog.New(slog.DiscardHandler), closeFn
	case 1:
		return slog.New(handlers[0]), closeFn
	default:
		return slog.New(fanout(handlers)), closeFn
	}
}

// fanout sends every record to each handler that is enabled for it.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
