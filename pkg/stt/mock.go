package stt

import (
	"context"
	"sync"
	"time"
)

// Mock implements Transcriber for testing.
// All methods can be customized via function fields.
type Mock struct {
	// TranscribeFunc is called when Transcribe is invoked.
	// If nil, returns an empty transcript.
	TranscribeFunc func(ctx context.Context, audio []byte, format string) (string, error)

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
	Method string
	Bytes  int
	Format string
	Time   time.Time
}

// NewMock creates a mock that transcribes every clip to the given text.
func NewMock(transcript string) *Mock {
	return &Mock{
		TranscribeFunc: func(ctx context.Context, audio []byte, format string) (string, error) {
			return transcript, nil
		},
	}
}

// Transcribe calls TranscribeFunc and records the call.
func (m *Mock) Transcribe(ctx context.Context, audio []byte, format string) (string, error) {
	m.recordCall("Transcribe", len(audio), format)
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audio, format)
	}
	return "", nil
}

// Health calls HealthFunc and records the call.
func (m *Mock) Health(ctx context.Context) error {
	m.recordCall("Health", 0, "")
	if m.HealthFunc != nil {
		return m.HealthFunc(ctx)
	}
	return nil
}

// Close calls CloseFunc and records the call.
func (m *Mock) Close() error {
	m.recordCall("Close", 0, "")
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// recordCall adds a call to the tracking list.
func (m *Mock) recordCall(method string, size int, format string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{
		Method: method,
		Bytes:  size,
		Format: format,
		Time:   time.Now(),
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

// WithError returns a mock that always returns the given error.
func WithError(err error) *Mock {
	return &Mock{
		TranscribeFunc: func(ctx context.Context, audio []byte, format string) (string, error) {
			return "", err
		},
		HealthFunc: func(ctx context.Context) error {
			return err
		},
	}
}

// Verify Mock implements Transcriber at compile time.
var _ Transcriber = (*Mock)(nil)
