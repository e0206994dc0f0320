package llm

import (
	"context"
	"fmt"
	"sync"

	"bitebot/internal/agent/ports"
)

// MockClient implements ports.LLMClient for tests. It replays a scripted
// sequence of responses and records every request it receives.
type MockClient struct {
	mu        sync.Mutex
	responses []*ports.CompletionResponse
	errs      []error
	Requests  []ports.CompletionRequest
}

// NewMockClient builds a mock that returns the given responses in order.
func NewMockClient(responses ...*ports.CompletionResponse) *MockClient {
	return &MockClient{responses: responses}
}

// FailWith queues an error to be returned after the scripted responses run out.
func (m *MockClient) FailWith(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, err)
	return m
}

func (m *MockClient) Model() string {
	return "mock-model"
}

func (m *MockClient) Complete(_ context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)

	if len(m.responses) > 0 {
		resp := m.responses[0]
		m.responses = m.responses[1:]
		return resp, nil
	}
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return nil, err
	}
	return nil, fmt.Errorf("mock client: no scripted response left")
}
