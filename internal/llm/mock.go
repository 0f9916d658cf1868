package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// errMockDrained is returned once every scripted response has been used.
var errMockDrained = errors.New("mock provider: no scripted responses left")

// MockResponse scripts one reply of a MockProvider. A non-empty
// StopReason overrides the default "end".
type MockResponse struct {
	Content    json.RawMessage
	Usage      Usage
	StopReason string
	Err        error
}

// MockText scripts a reply whose content is text verbatim.
func MockText(text string) MockResponse {
	return MockResponse{Content: json.RawMessage(text)}
}

// MockProvider replays scripted responses in order and records every
// request it receives. It is safe for concurrent use.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	Calls  []Request
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)

	if len(m.script) == 0 {
		return nil, &ErrProviderUnavailable{Err: errMockDrained}
	}
	next := m.script[0]
	m.script = m.script[1:]
	if next.Err != nil {
		return nil, next.Err
	}

	stop := next.StopReason
	if stop == "" {
		stop = "end"
	}
	return &Response{
		Content:    next.Content,
		Usage:      next.Usage,
		Model:      m.ModelID(),
		StopReason: stop,
	}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

// AddResponse appends to the script.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	m.script = append(m.script, resp)
	m.mu.Unlock()
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastRequest returns the most recent request, or false before any call.
func (m *MockProvider) LastRequest() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return Request{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}
