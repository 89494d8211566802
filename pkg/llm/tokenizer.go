package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"
)

// HTTPTokenizer counts tokens via the model server's tokenize endpoint
// (vLLM and compatible servers expose POST /tokenize).
type HTTPTokenizer struct {
	url        string
	model      string
	httpClient *http.Client
}

// NewHTTPTokenizer creates a tokenizer backed by a tokenize endpoint.
func NewHTTPTokenizer(url, model string) *HTTPTokenizer {
	return &HTTPTokenizer{
		url:        url,
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type tokenizeRequest struct {
	Model  string `json:"model,omitempty"`
	Prompt string `json:"prompt"`
}

type tokenizeResponse struct {
	Count  int   `json:"count"`
	Tokens []int `json:"tokens"`
}

// CountTokens submits the text to the tokenize endpoint and returns the
// token count as reported by the serving model.
func (t *HTTPTokenizer) CountTokens(ctx context.Context, text string) (int, error) {
	body, err := json.Marshal(tokenizeRequest{Model: t.model, Prompt: text})
	if err != nil {
		return 0, fmt.Errorf("marshal tokenize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build tokenize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return 0, ClassifyError(fmt.Errorf("tokenize call: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, ClassifyError(fmt.Errorf("tokenize call: HTTP %d", resp.StatusCode))
	}

	var parsed tokenizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode tokenize response: %w", err)
	}

	if parsed.Count > 0 {
		return parsed.Count, nil
	}
	return len(parsed.Tokens), nil
}

// EstimatingTokenizer approximates token counts at roughly four characters
// per token. Used when no tokenize endpoint is configured; the estimate is
// conservative enough for the chunk-size ceiling.
type EstimatingTokenizer struct{}

// NewEstimatingTokenizer creates a character-based token estimator.
func NewEstimatingTokenizer() *EstimatingTokenizer {
	return &EstimatingTokenizer{}
}

// CountTokens estimates tokens as ceil(runes / 4).
func (t *EstimatingTokenizer) CountTokens(_ context.Context, text string) (int, error) {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0, nil
	}
	return (n + 3) / 4, nil
}
