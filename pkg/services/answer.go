package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/llm"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/models"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/search"
)

const answerSystemMessage = `You are a fishing regulations assistant for New Zealand. ` +
	`Answer using only the provided regulation excerpts. If the excerpts do ` +
	`not contain the answer, say so plainly. Always name the region a rule ` +
	`applies to, and remind the reader to check current official rules ` +
	`before fishing.`

const answerPromptTemplate = `Regulation excerpts:

%s

Question: %s

Answer based strictly on the excerpts above.`

// chunkJoiner separates retrieved excerpts inside the prompt.
const chunkJoiner = "\n\n---\n\n"

const answerTemperature = 0.2

// AnswerRequest is one question for the RAG pipeline.
type AnswerRequest struct {
	Question string
	Filter   *models.SearchFilter
	TopK     int
}

// SourceRef identifies one chunk that grounded an answer.
type SourceRef struct {
	ChunkID         string  `json:"chunk_id"`
	FileName        string  `json:"file_name"`
	DocumentSection string  `json:"document_section"`
	Region          string  `json:"region"`
	Score           float64 `json:"score"`
}

// Answer is a synthesized answer with its grounding chunks.
type Answer struct {
	Answer  string      `json:"answer"`
	Sources []SourceRef `json:"sources"`
	Model   string      `json:"model"`
}

// AnswerService synthesizes grounded answers over the regulations corpus.
type AnswerService interface {
	Ask(ctx context.Context, req AnswerRequest) (*Answer, error)
}

type answerService struct {
	search  search.Service
	client  llm.Client
	breaker *llm.CircuitBreaker
	logger  *zap.Logger
}

// NewAnswerService creates the answer synthesis service.
func NewAnswerService(searchSvc search.Service, client llm.Client, breaker *llm.CircuitBreaker, logger *zap.Logger) AnswerService {
	return &answerService{
		search:  searchSvc,
		client:  client,
		breaker: breaker,
		logger:  logger.Named("answer"),
	}
}

var _ AnswerService = (*answerService)(nil)

// Ask retrieves the top-k chunks for the question, assembles them into the
// prompt in ranked order, and returns the completion verbatim together with
// the source references. Completion errors propagate to the caller; there is
// no degraded fallback answer.
func (s *answerService) Ask(ctx context.Context, req AnswerRequest) (*Answer, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, fmt.Errorf("question is required")
	}

	results, err := s.search.Query(ctx, search.QueryRequest{
		Query:  req.Question,
		Filter: req.Filter,
		Limit:  req.TopK,
	})
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	if len(results) == 0 {
		return &Answer{
			Answer:  "No matching regulations were found for this question.",
			Sources: []SourceRef{},
			Model:   s.client.Model(),
		}, nil
	}

	texts := make([]string, len(results))
	sources := make([]SourceRef, len(results))
	for i, r := range results {
		texts[i] = r.Text
		sources[i] = SourceRef{
			ChunkID:         r.ChunkID,
			FileName:        r.FileName,
			DocumentSection: r.DocumentSection,
			Region:          r.Region,
			Score:           r.Score,
		}
	}

	prompt := fmt.Sprintf(answerPromptTemplate, strings.Join(texts, chunkJoiner), req.Question)

	if allowed, err := s.breaker.Allow(); !allowed {
		return nil, err
	}

	completion, err := s.client.Complete(ctx, prompt, answerSystemMessage, answerTemperature)
	if err != nil {
		s.breaker.RecordFailure()
		return nil, err
	}
	s.breaker.RecordSuccess()

	s.logger.Debug("Answer synthesized",
		zap.Int("sources", len(sources)),
		zap.Int("answer_chars", len(completion.Content)))

	return &Answer{
		Answer:  completion.Content,
		Sources: sources,
		Model:   s.client.Model(),
	}, nil
}
