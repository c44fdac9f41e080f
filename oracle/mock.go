package oracle

import (
	"context"
	"sync"
)

// MockOracle is a lightweight in-memory Oracle useful for tests & examples.
// Responses are consumed in FIFO order; once the queue is drained every call
// returns the configured default text.
type MockOracle struct {
	mu          sync.Mutex
	queue       []mockTurn
	defaultText string
	calls       int
	requests    []Request
}

type mockTurn struct {
	resp *Response
	err  error
}

// NewMockOracle constructs a MockOracle with tool support enabled.
func NewMockOracle() *MockOracle {
	return &MockOracle{defaultText: "mock response"}
}

// EnqueueText queues a plain text reply.
func (m *MockOracle) EnqueueText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockTurn{resp: &Response{Text: text}})
}

// EnqueueToolCall queues a reply requesting the named capability.
func (m *MockOracle) EnqueueToolCall(name, arguments string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockTurn{resp: &Response{ToolCall: &ToolCall{ID: "call_mock", Name: name, Arguments: arguments}}})
}

// EnqueueError queues a failing round.
func (m *MockOracle) EnqueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockTurn{err: err})
}

// SetDefaultText overrides the reply used once the queue is drained.
func (m *MockOracle) SetDefaultText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultText = text
}

// Calls reports how many Complete rounds were issued.
func (m *MockOracle) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Requests returns the recorded requests in call order.
func (m *MockOracle) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Complete implements Oracle.
func (m *MockOracle) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.requests = append(m.requests, req)
	if len(m.queue) == 0 {
		return &Response{Text: m.defaultText}, nil
	}
	turn := m.queue[0]
	m.queue = m.queue[1:]
	if turn.err != nil {
		return nil, turn.err
	}
	return turn.resp, nil
}

// Info implements Oracle.
func (m *MockOracle) Info() Info {
	return Info{Name: "mock", Provider: "mock", SupportsTools: true}
}
