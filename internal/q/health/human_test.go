package health

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanError(t *testing.T) {
	err := NewHumanErr("credential invalid or expired", "generate.auth", "status", 401)
	assert.Equal(t, "credential invalid or expired", err.Error())
	assert.Equal(t, "generate.auth[status=401]", err.(*HumanErr).HealthErr.Error())

	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	LogErr(logger, err)
	assert.Contains(t, buf.String(), `msg=generate.auth status=401`)
}

func TestWrapHuman(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := WrapHuman("network connection failed", "generate.send", cause, "attempt", 2)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "network connection failed", err.Error())

	var h *HumanErr
	require.True(t, errors.As(err, &h))
	assert.Equal(t, "generate.send[attempt=2] via dial tcp: connection refused", h.HealthErr.Error())
}

func TestHumanMessage(t *testing.T) {
	assert.Equal(t, "", HumanMessage(nil))
	assert.Equal(t, "plain", HumanMessage(errors.New("plain")))

	inner := NewHumanErr("backend temporarily unavailable", "status 503")
	wrapped := fmt.Errorf("task 3: %w", inner)
	assert.Equal(t, "backend temporarily unavailable", HumanMessage(wrapped))
}
