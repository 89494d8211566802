package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/logging"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/services"
	enginesql "github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/sql"
)

// QueryHandler serves the read-only analytical query surface.
type QueryHandler struct {
	queries services.QueryService
	logger  *zap.Logger
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(queries services.QueryService, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{queries: queries, logger: logger}
}

// RegisterRoutes registers the query route on the given mux.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/query", h.Execute)
}

// Execute handles POST /api/query. Validation failures (non-SELECT,
// multiple statements, bad parameters, injection attempts) are 400s;
// execution failures are 500s.
func (h *QueryHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req services.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := h.queries.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, enginesql.ErrNotSelect):
			_ = ErrorResponse(w, http.StatusBadRequest, "not_select", err.Error())
		case errors.Is(err, enginesql.ErrMultipleStatements):
			_ = ErrorResponse(w, http.StatusBadRequest, "multiple_statements", err.Error())
		case isValidationError(err):
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_query", err.Error())
		default:
			h.logger.Error("Query execution failed",
				zap.String("error", logging.SanitizeError(err)))
			_ = ErrorResponse(w, http.StatusInternalServerError, "query_failed", err.Error())
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode query result", zap.Error(err))
	}
}

// isValidationError distinguishes pre-execution failures (client's fault)
// from execution failures.
func isValidationError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "injection screening") ||
		strings.Contains(msg, "parameter") ||
		strings.Contains(msg, "sql is required")
}
