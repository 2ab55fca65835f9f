package chat

import (
	"context"
	"sync"
	"time"
)

// Mock implements Completer for testing.
// All methods can be customized via function fields.
type Mock struct {
	// CompleteFunc is called when Complete is invoked.
	// If nil, returns an empty completion.
	CompleteFunc func(ctx context.Context, messages []Message) (*Completion, error)

	// HealthFunc is called when Health is invoked.
	// If nil, returns nil (healthy).
	HealthFunc func(ctx context.Context) error

	// CloseFunc is called when Close is invoked.
	// If nil, returns nil.
	CloseFunc func() error

	// Tracking
	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a method invocation for verification.
type MockCall struct {
	Method   string
	Messages []Message
	Time     time.Time
}

// NewMock creates a mock that replies with the given fixed content.
func NewMock(reply string) *Mock {
	return &Mock{
		CompleteFunc: func(ctx context.Context, messages []Message) (*Completion, error) {
			return &Completion{Content: reply, Model: "mock"}, nil
		},
	}
}

// Complete calls CompleteFunc and records the call.
func (m *Mock) Complete(ctx context.Context, messages []Message) (*Completion, error) {
	m.recordCall("Complete", messages)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, messages)
	}
	return &Completion{Model: "mock"}, nil
}

// Health calls HealthFunc and records the call.
func (m *Mock) Health(ctx context.Context) error {
	m.recordCall("Health", nil)
	if m.HealthFunc != nil {
		return m.HealthFunc(ctx)
	}
	return nil
}

// Close calls CloseFunc and records the call.
func (m *Mock) Close() error {
	m.recordCall("Close", nil)
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// recordCall adds a call to the tracking list.
func (m *Mock) recordCall(method string, messages []Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{
		Method:   method,
		Messages: messages,
		Time:     time.Now(),
	})
}

// Calls returns all recorded method calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MockCall, len(m.calls))
	copy(result, m.calls)
	return result
}

// CallCount returns the number of times a method was called.
func (m *Mock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

// LastMessages returns the message list of the most recent Complete call.
func (m *Mock) LastMessages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.calls) - 1; i >= 0; i-- {
		if m.calls[i].Method == "Complete" {
			return m.calls[i].Messages
		}
	}
	return nil
}

// WithError returns a mock that always returns the given error.
func WithError(err error) *Mock {
	return &Mock{
		CompleteFunc: func(ctx context.Context, messages []Message) (*Completion, error) {
			return nil, err
		},
		HealthFunc: func(ctx context.Context) error {
			return err
		},
	}
}

// Verify Mock implements Completer at compile time.
var _ Completer = (*Mock)(nil)
