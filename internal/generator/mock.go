package generator

import (
	"context"
	"errors"
	"sync"
)

// Mock is a scriptable TextGenerator for tests: responses are consumed in
// order, then Err (or the last response, when Repeat is set) is returned.
// Safe for concurrent use.
type Mock struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Repeat    bool

	// Prompts records every prompt received, in call order.
	Prompts []string
}

// Failing returns a mock whose every call errors.
func Failing(err error) *Mock {
	if err == nil {
		err = errors.New("generator unavailable")
	}
	return &Mock{Err: err}
}

// Fixed returns a mock that answers every prompt with the same text.
func Fixed(text string) *Mock {
	return &Mock{Responses: []string{text}, Repeat: true}
}

func (m *Mock) Generate(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)

	if len(m.Responses) == 0 {
		if m.Err != nil {
			return "", m.Err
		}
		return "", ErrEmptyCompletion
	}
	resp := m.Responses[0]
	if len(m.Responses) > 1 || !m.Repeat {
		m.Responses = m.Responses[1:]
	}
	return resp, nil
}

// CallCount returns how many times Generate was invoked.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
