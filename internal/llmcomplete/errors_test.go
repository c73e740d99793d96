package llmcomplete

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetryable(t *testing.T) {
	retryable := map[ErrorKind]bool{
		KindNetwork:            true,
		KindTimeout:            true,
		KindRateLimit:          true,
		KindServiceUnavailable: true,
		KindInvalidAPIKey:      false,
		KindConfiguration:      false,
		KindInvalidResponse:    false,
		KindUnknown:            false,
	}
	for k, want := range retryable {
		assert.Equal(t, want, k.Retryable(), k.String())
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{401, KindInvalidAPIKey},
		{403, KindInvalidAPIKey},
		{429, KindRateLimit},
		{400, KindConfiguration},
		{404, KindConfiguration},
		{422, KindConfiguration},
		{500, KindServiceUnavailable},
		{503, KindServiceUnavailable},
		{302, KindUnknown},
	}
	for _, tt := range tests {
		e := classifyStatus(tt.status, "", errors.New("x"))
		assert.Equal(t, tt.want, e.Kind, tt.status)
		assert.Equal(t, tt.status, e.StatusCode)
	}
}

func TestClassify(t *testing.T) {
	opErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

	tests := []struct {
		name string
		err  error
		resp *http.Response
		want ErrorKind
	}{
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), nil, KindTimeout},
		{"cancelled", context.Canceled, nil, KindUnknown},
		{"dial", fmt.Errorf("post: %w", opErr), nil, KindNetwork},
		{"truncated", io.ErrUnexpectedEOF, nil, KindInvalidResponse},
		{"no choices", errNoChoices, nil, KindInvalidResponse},
		{"decode of 200", errors.New("apijson: bad"), &http.Response{StatusCode: 200}, KindInvalidResponse},
		{"status only", errors.New("bad gateway"), &http.Response{StatusCode: 502}, KindServiceUnavailable},
		{"other", errors.New("boom"), nil, KindUnknown},
		{"already classified", &Error{Kind: KindRateLimit}, nil, KindRateLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err, tt.resp).Kind)
		})
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("task failed: %w", &Error{Kind: KindRateLimit, StatusCode: 429})
	assert.Equal(t, KindRateLimit, KindOf(err))
	assert.Equal(t, KindUnknown, KindOf(nil))

	cause := errors.New("root")
	e := &Error{Kind: KindNetwork, Err: cause}
	assert.ErrorIs(t, e, cause)
}

func TestErrorString(t *testing.T) {
	e := &Error{Kind: KindServiceUnavailable, StatusCode: 503, Detail: "overloaded", Attempts: 3}
	assert.Equal(t, "service_unavailable error (status 503): overloaded (after 3 attempts)", e.Error())

	e = &Error{Kind: KindNetwork, Err: errors.New("dial tcp: refused"), Attempts: 1}
	assert.Equal(t, "network error: dial tcp: refused", e.Error())
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&Error{Kind: KindNetwork}, "Network connection failed. Check your connectivity and the configured base URL."},
		{&Error{Kind: KindTimeout, Attempts: 3}, "generation failed after 3 attempts: request timed out"},
		{&Error{Kind: KindRateLimit}, "Request rate exceeded. Try again later."},
		{&Error{Kind: KindServiceUnavailable}, "The generation service is temporarily unavailable. Try again later."},
		{&Error{Kind: KindInvalidAPIKey}, "The API key is invalid or expired."},
		{&Error{Kind: KindConfiguration, Detail: "unknown model"}, "configuration error: unknown model"},
		{&Error{Kind: KindInvalidResponse}, "The generation service returned malformed data."},
		{&Error{Kind: KindUnknown, Err: errors.New("weird")}, "weird"},
		{errors.New("raw"), "raw"},
		{ErrEmptyGeneration, "generated text was empty"},
		{nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UserMessage(tt.err))
	}
}
