package llm

import (
	"context"
	"sync"
)

// MockClient is a configurable mock for testing LLM functionality.
// Set the function fields to control behavior in tests. Safe for concurrent
// use, matching how the worker pool drives the real client.
type MockClient struct {
	mu sync.Mutex

	// CompleteFunc is called when Complete is invoked.
	// If nil, returns empty result and nil error.
	CompleteFunc func(ctx context.Context, prompt string, systemMessage string, temperature float64) (*CompletionResult, error)

	// CreateEmbeddingFunc is called when CreateEmbedding is invoked.
	// If nil, returns nil slice and nil error.
	CreateEmbeddingFunc func(ctx context.Context, input string) ([]float32, error)

	// CreateEmbeddingsFunc is called when CreateEmbeddings is invoked.
	// If nil, returns nil slice and nil error.
	CreateEmbeddingsFunc func(ctx context.Context, inputs []string) ([][]float32, error)

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	// EndpointURL is returned by Endpoint. Defaults to "http://mock-endpoint".
	EndpointURL string

	// Call tracking for verification
	CompleteCalls         int
	CreateEmbeddingCalls  int
	CreateEmbeddingsCalls int
}

// NewMockClient creates a new mock with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		ModelName:   "mock-model",
		EndpointURL: "http://mock-endpoint",
	}
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, prompt string, systemMessage string, temperature float64) (*CompletionResult, error) {
	m.mu.Lock()
	m.CompleteCalls++
	m.mu.Unlock()
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt, systemMessage, temperature)
	}
	return &CompletionResult{}, nil
}

// CreateEmbedding implements Client.
func (m *MockClient) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	m.mu.Lock()
	m.CreateEmbeddingCalls++
	m.mu.Unlock()
	if m.CreateEmbeddingFunc != nil {
		return m.CreateEmbeddingFunc(ctx, input)
	}
	return nil, nil
}

// CreateEmbeddings implements Client.
func (m *MockClient) CreateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error) {
	m.mu.Lock()
	m.CreateEmbeddingsCalls++
	m.mu.Unlock()
	if m.CreateEmbeddingsFunc != nil {
		return m.CreateEmbeddingsFunc(ctx, inputs)
	}
	return nil, nil
}

// Model implements Client.
func (m *MockClient) Model() string {
	return m.ModelName
}

// Endpoint implements Client.
func (m *MockClient) Endpoint() string {
	return m.EndpointURL
}
