package llmcomplete

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Mock stands in for a Client. Generate replies with the value of the first key (in Keys order, else map order) contained in the request's snippet,
// case-insensitively.
type Mock struct {
	Responses map[string]string
	Keys      []string // optional match order
	Errors    map[string]error
	ConfigErr error // returned by CheckConfig

	mu       sync.Mutex
	requests []Request
}

func NewMock(responses map[string]string) *Mock {
	return &Mock{Responses: responses}
}

func (m *Mock) CheckConfig() error {
	return m.ConfigErr
}

func (m *Mock) Generate(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if err := m.ConfigErr; err != nil {
		return "", err
	}

	lower := strings.ToLower(req.Snippet)
	keys := m.Keys
	if keys == nil {
		for k := range m.Errors {
			keys = append(keys, k)
		}
		for k := range m.Responses {
			keys = append(keys, k)
		}
	}
	for _, k := range keys {
		if !strings.Contains(lower, strings.ToLower(k)) {
			continue
		}
		if err, ok := m.Errors[k]; ok {
			return "", err
		}
		if resp, ok := m.Responses[k]; ok {
			text := CleanResponse(resp)
			if text == "" {
				return "", ErrEmptyGeneration
			}
			return text, nil
		}
	}
	return "", fmt.Errorf("no mock response for %q", req.Snippet)
}

// Requests returns the requests seen so far.
func (m *Mock) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}
