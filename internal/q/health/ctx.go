package health

import "log/slog"

// Ctx is embedded by option structs that want logging without threading a logger through every call. The zero value is usable and logs nothing.
type Ctx struct {
	Logger *slog.Logger
}

func NewCtx(logger *slog.Logger) Ctx {
	return Ctx{Logger: logger}
}

// With returns a copy of c whose logger carries args on every record. If c has no logger, c is returned unchanged.
func (c Ctx) With(args ...any) Ctx {
	if c.Logger == nil {
		return c
	}
	return Ctx{Logger: c.Logger.With(args...)}
}

func (c Ctx) LogNewErr(msg string, args ...any) error {
	return LogNewErr(c.Logger, msg, args...)
}

func (c Ctx) LogWrappedErr(msg string, wrapped error, args ...any) error {
	return LogWrappedErr(c.Logger, msg, wrapped, args...)
}

// LogErr logs err (see the package-level LogErr) and returns it.
func (c Ctx) LogErr(err error, args ...any) error {
	return LogErr(c.Logger, err, args...)
}

func (c Ctx) Log(msg string, args ...any) {
	if c.Logger != nil {
		c.Logger.Info(msg, args...)
	}
}

func (c Ctx) Debug(msg string, args ...any) {
	if c.Logger != nil {
		c.Logger.Debug(msg, args...)
	}
}

func (c Ctx) Warn(msg string, args ...any) {
	if c.Logger != nil {
		c.Logger.Warn(msg, args...)
	}
}
