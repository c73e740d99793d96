package health

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAttrs(t *testing.T) {
	tests := []struct {
		attrs []any
		want  string
	}{
		{attrs: nil, want: ""},
		{attrs: []any{"path", "A.java"}, want: `path=A.java`},
		{attrs: []any{"path", "src/User Service.java", "attempt", 2, "retryable", true}, want: `path="src/User Service.java" attempt=2 retryable=true`},
		{attrs: []any{slog.String("kind", "function"), slog.Int("line", 12)}, want: `kind=function line=12`},
		{attrs: []any{"dangling"}, want: `!BADKEY=dangling`},
	}
	for _, tt := range tests {
		var b strings.Builder
		writeAttrs(&b, tt.attrs)
		assert.Equal(t, tt.want, b.String(), "%v", tt.attrs)
	}
}

func TestHealthErrError(t *testing.T) {
	assert.Equal(t, "resolve failed", NewErr("resolve failed").Error())
	assert.Equal(t, "resolve failed[path=A.java]", NewErr("resolve failed", "path", "A.java").Error())
	assert.Equal(t, "apply comment[task=getUserName] via element not found", Wrap("apply comment", errors.New("element not found"), "task", "getUserName").Error())
	assert.Equal(t, "outer via inner[n=1] via root", Wrap("outer", Wrap("inner", errors.New("root"), "n", 1)).Error())
	assert.Equal(t, "oops via health.Wrap called with a nil error", Wrap("oops", nil).Error())
}

func TestLogErr(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))

	err := LogWrappedErr(logger, "generate", errors.New("rate limited"), "task", "deleteUser")
	require.Error(t, err)
	assert.Equal(t, `level=ERROR msg=generate task=deleteUser via="rate limited"`+"\n", buf.String())

	buf.Reset()
	plain := errors.New("plain")
	assert.Same(t, plain, LogErr(logger, plain, "run", "r1"))
	assert.Equal(t, "level=ERROR msg=plain run=r1\n", buf.String())

	buf.Reset()
	human := NewHumanErr("The API key is invalid or expired.", "auth failed", "status", 401)
	_ = LogErr(logger, human)
	assert.Equal(t, "level=ERROR msg=\"auth failed\" status=401\n", buf.String())

	assert.Nil(t, LogErr(logger, nil))
	assert.Equal(t, plain, LogErr(nil, plain))
}

type causeErr struct {
	msg string
	err error
}

func (e *causeErr) Error() string { return e.msg }
func (e *causeErr) Unwrap() error { return e.err }

func TestHealthErrWrapping(t *testing.T) {
	sentinel := errors.New("sentinel")

	assert.ErrorIs(t, Wrap("layer 2", Wrap("layer 1", sentinel)), sentinel)
	assert.ErrorIs(t, Wrap("layer 2", &causeErr{msg: "layer 1", err: sentinel}), sentinel)
	assert.ErrorIs(t, fmt.Errorf("ctx: %w", Wrap("x", sentinel)), sentinel)

	cause := &causeErr{msg: "custom"}
	var target *causeErr
	require.ErrorAs(t, Wrap("health error", cause), &target)
	assert.Same(t, cause, target)

	var he *HealthErr
	require.ErrorAs(t, fmt.Errorf("outer: %w", NewErr("inner", "k", "v")), &he)
	assert.Equal(t, []any{"k", "v"}, he.Attrs())
}

func TestCtx(t *testing.T) {
	var buf strings.Builder
	ctx := NewCtx(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))).With("run", "abc")

	ctx.Log("task.start", "index", 1)
	ctx.Debug("skip", "reason", "already documented")
	ctx.Warn("fallback")
	out := buf.String()
	assert.Contains(t, out, "run=abc")
	assert.Contains(t, out, "index=1")
	assert.Contains(t, out, `reason="already documented"`)
	assert.Contains(t, out, "level=WARN")

	var zero Ctx
	assert.NotPanics(t, func() {
		zero.With("k", "v").Log("nothing")
		_ = zero.LogNewErr("nothing")
	})
}
