package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/apperrors"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/models"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/search"
)

// SearchRequest is the POST /api/search body.
type SearchRequest struct {
	Query  string               `json:"query"`
	Filter *models.SearchFilter `json:"filter,omitempty"`
	Limit  int                  `json:"limit,omitempty"`
}

// SearchHandler serves semantic search over the regulations corpus.
type SearchHandler struct {
	search search.Service
	logger *zap.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(searchSvc search.Service, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{search: searchSvc, logger: logger}
}

// RegisterRoutes registers the search route on the given mux.
func (h *SearchHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/search", h.Search)
}

// filterAttrs are the attributes the exact-match filter accepts.
var filterAttrs = map[string]bool{
	"document_section": true,
	"region":           true,
	"file_name":        true,
	"keyword":          true,
}

// invalidFilterAttr returns the first unknown attribute in the filter, if
// any.
func invalidFilterAttr(filter *models.SearchFilter) (string, bool) {
	if filter.IsZero() {
		return "", true
	}
	for attr := range filter.Eq {
		if !filterAttrs[attr] {
			return attr, false
		}
	}
	return "", true
}

// Search handles POST /api/search.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Query == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "query is required")
		return
	}
	if attr, ok := invalidFilterAttr(req.Filter); !ok {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_filter", "unknown filter attribute: "+attr)
		return
	}

	results, err := h.search.Query(r.Context(), search.QueryRequest{
		Query:  req.Query,
		Filter: req.Filter,
		Limit:  req.Limit,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrSearchUnavailable) {
			_ = ErrorResponse(w, http.StatusServiceUnavailable, "search_unavailable", err.Error())
			return
		}
		h.logger.Error("Search failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusBadGateway, "search_failed", err.Error())
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"results": results}); err != nil {
		h.logger.Error("Failed to encode search response", zap.Error(err))
	}
}
