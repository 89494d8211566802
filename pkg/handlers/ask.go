package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/models"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/services"
)

// AskRequest is the POST /api/ask body.
type AskRequest struct {
	Question string               `json:"question"`
	Filter   *models.SearchFilter `json:"filter,omitempty"`
	TopK     int                  `json:"top_k,omitempty"`
}

// AskHandler serves grounded answer synthesis.
type AskHandler struct {
	answers services.AnswerService
	logger  *zap.Logger
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(answers services.AnswerService, logger *zap.Logger) *AskHandler {
	return &AskHandler{answers: answers, logger: logger}
}

// RegisterRoutes registers the ask route on the given mux.
func (h *AskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ask", h.Ask)
}

// Ask handles POST /api/ask. Retrieval or completion failures surface as
// 502: the answer path has no degraded fallback.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Question == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "question is required")
		return
	}
	if attr, ok := invalidFilterAttr(req.Filter); !ok {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_filter", "unknown filter attribute: "+attr)
		return
	}

	answer, err := h.answers.Ask(r.Context(), services.AnswerRequest{
		Question: req.Question,
		Filter:   req.Filter,
		TopK:     req.TopK,
	})
	if err != nil {
		h.logger.Error("Answer synthesis failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusBadGateway, "answer_failed", err.Error())
		return
	}

	if err := WriteJSON(w, http.StatusOK, answer); err != nil {
		h.logger.Error("Failed to encode answer response", zap.Error(err))
	}
}
