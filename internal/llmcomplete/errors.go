package llmcomplete

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	openai "github.com/openai/openai-go/v3"
)

// ErrorKind classifies a generation failure. The kind decides whether a retry can help and which message the user sees.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNetwork
	KindTimeout
	KindRateLimit
	KindServiceUnavailable
	KindInvalidAPIKey
	KindConfiguration
	KindInvalidResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindRateLimit:
		return "rate_limit"
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindInvalidAPIKey:
		return "invalid_api_key"
	case KindConfiguration:
		return "configuration"
	case KindInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// Retryable reports whether another attempt can succeed without the user changing anything.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindNetwork, KindTimeout, KindRateLimit, KindServiceUnavailable:
		return true
	default:
		return false
	}
}

// ErrEmptyGeneration is returned when the backend answered but nothing was left after cleanup.
var ErrEmptyGeneration = errors.New("generated text was empty")

// errNoChoices is a 2xx response without a first choice.
var errNoChoices = errors.New("response has no choices")

// Error is a classified generation failure. It unwraps to the transport or SDK error that caused it.
type Error struct {
	Kind       ErrorKind
	StatusCode int    // HTTP status, 0 if no response was received
	Detail     string // backend- or config-provided detail, if any
	Attempts   int    // attempts made before giving up; set by Client.Generate
	Err        error
}

func (e *Error) Error() string {
	msg := e.Kind.String() + " error"
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Attempts > 1 {
		msg += fmt.Sprintf(" (after %d attempts)", e.Attempts)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func configErr(detail string) *Error {
	return &Error{Kind: KindConfiguration, Detail: detail}
}

// KindOf classifies any error. An *Error in the chain keeps its kind; anything else is classified as if it came from a request.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return classify(err, nil).Kind
}

// classify maps a request error to an *Error. httpResp is the raw response if one was received.
func classify(err error, httpResp *http.Response) *Error {
	var already *Error
	if errors.As(err, &already) {
		return already
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.StatusCode, apiErr.Message, err)
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindUnknown, Detail: "request cancelled", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Err: err}
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return &Error{Kind: KindTimeout, Err: err}
		}
		return &Error{Kind: KindNetwork, Err: err}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.Is(err, errNoChoices) || errors.Is(err, io.ErrUnexpectedEOF) || errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &Error{Kind: KindInvalidResponse, Err: err}
	}

	if httpResp != nil {
		if httpResp.StatusCode >= 200 && httpResp.StatusCode < 300 {
			// The SDK failed to decode a successful response.
			return &Error{Kind: KindInvalidResponse, StatusCode: httpResp.StatusCode, Err: err}
		}
		return classifyStatus(httpResp.StatusCode, "", err)
	}

	return &Error{Kind: KindUnknown, Err: err}
}

func classifyStatus(status int, detail string, err error) *Error {
	e := &Error{StatusCode: status, Detail: detail, Err: err}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = KindInvalidAPIKey
	case status == http.StatusTooManyRequests:
		e.Kind = KindRateLimit
	case status >= 400 && status < 500:
		e.Kind = KindConfiguration
	case status >= 500 && status < 600:
		e.Kind = KindServiceUnavailable
	default:
		e.Kind = KindUnknown
	}
	return e
}

// UserMessage is the message shown to a user for err (notifications, CLI output).
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrEmptyGeneration) {
		return ErrEmptyGeneration.Error()
	}

	var e *Error
	if !errors.As(err, &e) {
		e = classify(err, nil)
	}

	switch e.Kind {
	case KindNetwork:
		return "Network connection failed. Check your connectivity and the configured base URL."
	case KindTimeout:
		if e.Attempts > 0 {
			return fmt.Sprintf("generation failed after %d attempts: request timed out", e.Attempts)
		}
		return "request timed out"
	case KindRateLimit:
		return "Request rate exceeded. Try again later."
	case KindServiceUnavailable:
		return "The generation service is temporarily unavailable. Try again later."
	case KindInvalidAPIKey:
		return "The API key is invalid or expired."
	case KindConfiguration:
		if e.Detail == "" {
			return "configuration error"
		}
		return "configuration error: " + e.Detail
	case KindInvalidResponse:
		return "The generation service returned malformed data."
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return err.Error()
	}
}
