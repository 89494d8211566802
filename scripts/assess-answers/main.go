// assess-answers evaluates answer quality from the /api/ask endpoint using
// an LLM-as-judge.
//
// It submits a fixed set of fishing-regulation questions to a running
// server, then asks Claude to grade each answer on:
//   - Groundedness: does the answer stay within the cited excerpts?
//   - Region awareness: does the answer name which region a rule applies to?
//   - Refusal quality: does it say so plainly when the corpus has no answer?
//
// Usage: go run ./scripts/assess-answers [base-url]
//
// Requires: ANTHROPIC_API_KEY environment variable. base-url defaults to
// http://localhost:8080.
//
// NOTE: This standalone assessment script talks to the HTTP API rather than
// the service layer. This is intentional to keep the script self-contained
// and to exercise the same surface a hackathon team would.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/liushuangls/go-anthropic/v2"
)

const judgeModel = "claude-sonnet-4-5-20250929"

var questions = []string{
	"What is the daily bag limit for snapper in the Auckland area?",
	"What is the minimum legal size for blue cod?",
	"Can I take paua while scuba diving?",
	"Are there any closed seasons for scallops?",
	"What are the rules inside marine reserves?",
	"What is the combined daily bag limit for finfish in Fiordland?",
}

// AskResponse mirrors the /api/ask response body.
type AskResponse struct {
	Answer  string `json:"answer"`
	Sources []struct {
		ChunkID         string  `json:"chunk_id"`
		FileName        string  `json:"file_name"`
		DocumentSection string  `json:"document_section"`
		Region          string  `json:"region"`
		Score           float64 `json:"score"`
	} `json:"sources"`
	Model string `json:"model"`
}

// Grade is the judge's verdict for one question.
type Grade struct {
	Question     string `json:"question"`
	Answer       string `json:"answer"`
	SourceCount  int    `json:"source_count"`
	Groundedness int    `json:"groundedness"` // 1-5
	RegionNamed  bool   `json:"region_named"`
	Score        int    `json:"score"` // 0-100
	Reasoning    string `json:"reasoning"`
}

// AssessmentResult contains the full assessment output.
type AssessmentResult struct {
	BaseURL      string  `json:"base_url"`
	ModelUsed    string  `json:"model_used"`
	Grades       []Grade `json:"grades"`
	AverageScore int     `json:"average_score"`
}

func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		fmt.Fprintf(os.Stderr, "ANTHROPIC_API_KEY environment variable required\n")
		os.Exit(1)
	}

	baseURL := "http://localhost:8080"
	if len(os.Args) > 1 {
		baseURL = strings.TrimSuffix(os.Args[1], "/")
	}

	ctx := context.Background()
	client := anthropic.NewClient(apiKey)
	httpClient := &http.Client{Timeout: 2 * time.Minute}

	result := AssessmentResult{
		BaseURL:   baseURL,
		ModelUsed: judgeModel,
	}

	total := 0
	for _, question := range questions {
		answer, err := ask(ctx, httpClient, baseURL, question)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ask failed for %q: %v\n", question, err)
			os.Exit(1)
		}

		grade, err := judge(ctx, client, question, answer)
		if err != nil {
			fmt.Fprintf(os.Stderr, "grading failed for %q: %v\n", question, err)
			os.Exit(1)
		}

		result.Grades = append(result.Grades, grade)
		total += grade.Score
	}

	if len(result.Grades) > 0 {
		result.AverageScore = total / len(result.Grades)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func ask(ctx context.Context, client *http.Client, baseURL, question string) (*AskResponse, error) {
	body, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/ask", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var answer AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &answer, nil
}

const judgePromptTemplate = `You are grading an answer from a fishing regulations assistant.

Question: %s

Answer given:
%s

The answer cited %d source excerpts.

Grade the answer and respond with ONLY a JSON object:
{
  "groundedness": <1-5, 5 = clearly stays within cited material, 1 = invents rules>,
  "region_named": <true if the answer names which region/area a rule applies to, or correctly says none applies>,
  "score": <0-100 overall quality>,
  "reasoning": "<one or two sentences>"
}

An answer that plainly says the excerpts do not cover the question is a GOOD
answer when no sources were cited; do not penalize honest refusals.`

func judge(ctx context.Context, client *anthropic.Client, question string, answer *AskResponse) (Grade, error) {
	prompt := fmt.Sprintf(judgePromptTemplate, question, answer.Answer, len(answer.Sources))

	resp, err := client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     judgeModel,
		MaxTokens: 1024,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				anthropic.NewTextMessageContent(prompt),
			}},
		},
	})
	if err != nil {
		return Grade{}, err
	}

	verdict := extractJSON(extractTextFromResponse(resp))

	grade := Grade{
		Question:    question,
		Answer:      answer.Answer,
		SourceCount: len(answer.Sources),
	}
	if err := json.Unmarshal([]byte(verdict), &grade); err != nil {
		return Grade{}, fmt.Errorf("judge returned unparseable verdict: %w", err)
	}
	return grade, nil
}

func extractJSON(s string) string {
	// Find JSON object in response
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

func extractTextFromResponse(resp anthropic.MessagesResponse) string {
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			return *block.Text
		}
	}
	return ""
}
