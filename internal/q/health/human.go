package health

import "errors"

// HumanErr has both a message suitable for end users and a HealthErr suitable for logging.
type HumanErr struct {
	HumanMessage string
	HealthErr
}

// NewHumanErr returns a HumanErr with humanMsg for users and msg/args for logs.
func NewHumanErr(humanMsg string, msg string, args ...any) error {
	return &HumanErr{HumanMessage: humanMsg, HealthErr: HealthErr{Message: msg, attrs: args}}
}

// WrapHuman is NewHumanErr for an error with a cause. errors.Is and errors.As see through it to wrapped.
func WrapHuman(humanMsg string, msg string, wrapped error, args ...any) error {
	return &HumanErr{HumanMessage: humanMsg, HealthErr: HealthErr{Message: msg, wrapped: wrapped, attrs: args}}
}

// Error returns only the human message. The log-oriented message is available via e.HealthErr.Error().
func (e *HumanErr) Error() string {
	return e.HumanMessage
}

func (e *HumanErr) Unwrap() error {
	return e.wrapped
}

// HumanMessage returns the human message of the outermost HumanErr in err's chain, or err.Error() if there is none. It returns "" for a nil err.
func HumanMessage(err error) string {
	if err == nil {
		return ""
	}
	var h *HumanErr
	if errors.As(err, &h) && h.HumanMessage != "" {
		return h.HumanMessage
	}
	return err.Error()
}
