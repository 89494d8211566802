// Package llm provides OpenAI-compatible completion and embedding clients
// for the answer-synthesis and search-index components.
package llm

import (
	"context"
)

// Client defines the interface for LLM operations. It combines generative
// (completion) and embedding capabilities. Use this interface for dependency
// injection to enable mocking in tests.
type Client interface {
	// Complete submits a prompt to the completion endpoint and returns the
	// model's answer verbatim.
	Complete(ctx context.Context, prompt string, systemMessage string, temperature float64) (*CompletionResult, error)

	// CreateEmbedding generates an embedding vector for the input text.
	CreateEmbedding(ctx context.Context, input string) ([]float32, error)

	// CreateEmbeddings generates embeddings for multiple inputs in one call.
	CreateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error)

	// Model returns the configured model name.
	Model() string

	// Endpoint returns the configured endpoint.
	Endpoint() string
}

// CompletionResult holds a completion response and its usage stats.
type CompletionResult struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Tokenizer counts tokens the way the serving model does. The chunking
// filter uses it to enforce the per-chunk token ceiling.
type Tokenizer interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

// Ensure implementations satisfy the interfaces at compile time.
var (
	_ Client    = (*OpenAIClient)(nil)
	_ Client    = (*MockClient)(nil)
	_ Tokenizer = (*HTTPTokenizer)(nil)
	_ Tokenizer = (*EstimatingTokenizer)(nil)
)
