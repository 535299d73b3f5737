package providers

import (
	"context"
	"sync"
	"time"
)

// MockResponse scripts one Chat call on a MockClient.
type MockResponse struct {
	Content string
	Err     error
}

// MockClient is a scripted VisionClient for tests. Each Chat call consumes
// the next scripted response; calls past the script repeat the last entry.
type MockClient struct {
	mu        sync.Mutex
	Responses []MockResponse
	Latency   time.Duration
	HealthErr error

	calls    int
	Requests []*ChatRequest
}

// NewMockClient creates a mock that returns the given responses in order.
func NewMockClient(responses ...MockResponse) *MockClient {
	return &MockClient{Responses: responses}
}

// Name returns the client identifier.
func (m *MockClient) Name() string {
	return "mock"
}

// Chat returns the next scripted response.
func (m *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	idx := m.calls
	m.calls++
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	latency := m.Latency
	m.mu.Unlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if idx < 0 {
		return &ChatResult{Success: true, Provider: "mock"}, nil
	}

	resp := m.Responses[idx]
	if resp.Err != nil {
		return &ChatResult{
			Success:      false,
			Provider:     "mock",
			ErrorMessage: resp.Err.Error(),
		}, resp.Err
	}

	return &ChatResult{
		Success:   true,
		Provider:  "mock",
		Content:   resp.Content,
		ModelUsed: req.Model,
	}, nil
}

// CallCount reports how many Chat calls the mock has served.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// HealthCheck returns the configured health error, if any.
func (m *MockClient) HealthCheck(ctx context.Context) error {
	return m.HealthErr
}

// Verify interface
var _ VisionClient = (*MockClient)(nil)
