// Package parser wraps the hosted document-layout parser. The parser does
// the actual PDF understanding; this package only carries bytes to the
// endpoint and reads back structured text plus page metadata.
package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/apperrors"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/retry"
)

// Result is the parser's output for one document.
type Result struct {
	Content   string
	PageCount int
}

// DocumentParser submits a staged PDF to a layout parser and returns the
// extracted text. Implementations perform no validation of PDF structure;
// error detection downstream is "did the call return enough text".
type DocumentParser interface {
	Parse(ctx context.Context, fileName string, data []byte) (*Result, error)
}

// Config holds parser endpoint configuration.
type Config struct {
	Endpoint string
	APIKey   string
	Mode     string // Layout mode hint, e.g. "LAYOUT"
	Timeout  time.Duration
}

// HTTPParser calls a layout-parse HTTP endpoint.
type HTTPParser struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

var _ DocumentParser = (*HTTPParser)(nil)

// New creates an HTTP-backed document parser.
func New(cfg Config, logger *zap.Logger) (*HTTPParser, error) {
	if cfg.Endpoint == "" {
		return nil, apperrors.ErrParserUnavailable
	}
	if cfg.Mode == "" {
		cfg.Mode = "LAYOUT"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}

	return &HTTPParser{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("parser"),
	}, nil
}

type parseResponse struct {
	Content  string `json:"content"`
	Metadata struct {
		PageCount int `json:"pageCount"`
	} `json:"metadata"`
}

// Parse uploads the document as multipart form data and decodes the
// parser's {content, metadata:{pageCount}} response. Transient failures
// (transport errors, 5xx, rate limits) are retried with backoff.
func (p *HTTPParser) Parse(ctx context.Context, fileName string, data []byte) (*Result, error) {
	start := time.Now()

	var parsed parseResponse
	err := retry.DoIfRetryable(ctx, retry.DefaultConfig(), func() error {
		return p.doParse(ctx, fileName, data, &parsed)
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("Document parsed",
		zap.String("file", fileName),
		zap.Int("content_len", len(parsed.Content)),
		zap.Int("pages", parsed.Metadata.PageCount),
		zap.Duration("elapsed", time.Since(start)))

	return &Result{
		Content:   parsed.Content,
		PageCount: parsed.Metadata.PageCount,
	}, nil
}

func (p *HTTPParser) doParse(ctx context.Context, fileName string, data []byte, out *parseResponse) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if err := w.WriteField("mode", p.cfg.Mode); err != nil {
		return fmt.Errorf("write mode field: %w", err)
	}
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Endpoint, &body)
	if err != nil {
		return fmt.Errorf("build parse request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("parse call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("parse call: HTTP %d: %s", resp.StatusCode, string(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode parse response: %w", err)
	}
	return nil
}
