package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/apperrors"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/services"
)

// LoadDatasetRequest is the POST /api/datasets/{theme}/load body.
type LoadDatasetRequest struct {
	// Path of the source file, relative to the dataset root.
	Path string `json:"path"`
}

// DatasetsHandler serves the fact-table bulk loads.
type DatasetsHandler struct {
	datasets services.DatasetService
	logger   *zap.Logger
}

// NewDatasetsHandler creates a new DatasetsHandler.
func NewDatasetsHandler(datasets services.DatasetService, logger *zap.Logger) *DatasetsHandler {
	return &DatasetsHandler{datasets: datasets, logger: logger}
}

// RegisterRoutes registers the dataset routes on the given mux.
func (h *DatasetsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/datasets", h.List)
	mux.HandleFunc("POST /api/datasets/{theme}/load", h.Load)
}

// List handles GET /api/datasets.
func (h *DatasetsHandler) List(w http.ResponseWriter, r *http.Request) {
	if err := WriteJSON(w, http.StatusOK, map[string]any{"themes": h.datasets.Themes()}); err != nil {
		h.logger.Error("Failed to encode datasets response", zap.Error(err))
	}
}

// Load handles POST /api/datasets/{theme}/load. Malformed rows in the
// source file are skipped, not fatal; the report carries both counts.
func (h *DatasetsHandler) Load(w http.ResponseWriter, r *http.Request) {
	var req LoadDatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	report, err := h.datasets.LoadTheme(r.Context(), r.PathValue("theme"), req.Path)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUnknownTheme):
			_ = ErrorResponse(w, http.StatusNotFound, "unknown_theme", err.Error())
		case errors.Is(err, apperrors.ErrNotFound):
			_ = ErrorResponse(w, http.StatusNotFound, "not_found", err.Error())
		default:
			h.logger.Error("Dataset load failed",
				zap.String("theme", r.PathValue("theme")),
				zap.Error(err))
			_ = ErrorResponse(w, http.StatusBadRequest, "load_failed", err.Error())
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, report); err != nil {
		h.logger.Error("Failed to encode load report", zap.Error(err))
	}
}
