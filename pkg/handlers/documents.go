package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/apperrors"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/models"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/services"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/stage"
)

// maxUploadBytes caps a single PDF upload.
const maxUploadBytes = 64 << 20

// DocumentsHandler serves document upload, ingestion, and inspection.
type DocumentsHandler struct {
	ingestion services.IngestionService
	stage     *stage.Stage
	logger    *zap.Logger
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(ingestion services.IngestionService, st *stage.Stage, logger *zap.Logger) *DocumentsHandler {
	return &DocumentsHandler{ingestion: ingestion, stage: st, logger: logger}
}

// RegisterRoutes registers the document routes on the given mux.
func (h *DocumentsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/documents/upload", h.Upload)
	mux.HandleFunc("POST /api/documents/ingest", h.Ingest)
	mux.HandleFunc("GET /api/documents", h.List)
	mux.HandleFunc("GET /api/documents/{id}", h.Get)
}

// Upload handles POST /api/documents/upload: a multipart "file" part staged
// for later ingestion. Compressed uploads are rejected; the layout parser
// only accepts raw PDFs.
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_upload", "expected multipart form with a file part")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_upload", "missing file part")
		return
	}
	defer file.Close()

	staged, err := h.stage.Put(header.Filename, file)
	if err != nil {
		if errors.Is(err, apperrors.ErrCompressedUpload) {
			_ = ErrorResponse(w, http.StatusUnsupportedMediaType, "compressed_upload", err.Error())
			return
		}
		h.logger.Error("Failed to stage upload", zap.String("file_name", header.Filename), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "stage_failed", "failed to stage upload")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, staged); err != nil {
		h.logger.Error("Failed to encode upload response", zap.Error(err))
	}
}

// Ingest handles POST /api/documents/ingest: process every staged PDF not
// yet ingested. Safe to re-run; unchanged files are skipped by content hash.
func (h *DocumentsHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	result, err := h.ingestion.IngestStage(r.Context())
	if err != nil {
		h.logger.Error("Stage ingestion failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "ingestion_failed", err.Error())
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode ingest response", zap.Error(err))
	}
}

// List handles GET /api/documents with an optional ?status= filter.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := models.DocumentStatus(r.URL.Query().Get("status"))
	switch status {
	case "", models.DocumentPending, models.DocumentProcessing, models.DocumentSuccess, models.DocumentFailed:
	default:
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_status", "unknown document status")
		return
	}

	docs, err := h.ingestion.ListDocuments(r.Context(), status)
	if err != nil {
		h.logger.Error("Failed to list documents", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "list_failed", "failed to list documents")
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"documents": docs}); err != nil {
		h.logger.Error("Failed to encode documents response", zap.Error(err))
	}
}

// Get handles GET /api/documents/{id}.
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.ingestion.GetDocument(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = ErrorResponse(w, http.StatusNotFound, "not_found", "document not found")
			return
		}
		h.logger.Error("Failed to get document", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "get_failed", "failed to get document")
		return
	}

	if err := WriteJSON(w, http.StatusOK, doc); err != nil {
		h.logger.Error("Failed to encode document response", zap.Error(err))
	}
}
