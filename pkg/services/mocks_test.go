package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/apperrors"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/models"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/parser"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/repositories"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/search"
)

// fakeDocumentRepo is an in-memory DocumentRepository.
type fakeDocumentRepo struct {
	byID   map[uuid.UUID]*models.Document
	byHash map[string]uuid.UUID
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{
		byID:   make(map[uuid.UUID]*models.Document),
		byHash: make(map[string]uuid.UUID),
	}
}

func (f *fakeDocumentRepo) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.Status == "" {
		doc.Status = models.DocumentPending
	}
	copied := *doc
	f.byID[doc.ID] = &copied
	f.byHash[doc.ContentHash] = doc.ID
	return nil
}

func (f *fakeDocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	doc, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDocumentRepo) GetByHash(ctx context.Context, contentHash string) (*models.Document, error) {
	id, ok := f.byHash[contentHash]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return f.GetByID(ctx, id)
}

func (f *fakeDocumentRepo) List(ctx context.Context, status models.DocumentStatus) ([]*models.Document, error) {
	var out []*models.Document
	for _, doc := range f.byID {
		if status != "" && doc.Status != status {
			continue
		}
		copied := *doc
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeDocumentRepo) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	return f.setStatus(id, models.DocumentProcessing)
}

func (f *fakeDocumentRepo) MarkSuccess(ctx context.Context, id uuid.UUID, content string, pageCount int) error {
	doc, ok := f.byID[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	doc.Status = models.DocumentSuccess
	doc.ParsedContent = &content
	doc.PageCount = &pageCount
	doc.ErrorMessage = nil
	return nil
}

func (f *fakeDocumentRepo) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	doc, ok := f.byID[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	doc.Status = models.DocumentFailed
	doc.ErrorMessage = &message
	return nil
}

func (f *fakeDocumentRepo) setStatus(id uuid.UUID, status models.DocumentStatus) error {
	doc, ok := f.byID[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	doc.Status = status
	return nil
}

var _ repositories.DocumentRepository = (*fakeDocumentRepo)(nil)

// fakeChunkRepo stores chunk batches keyed by document.
type fakeChunkRepo struct {
	byDocument map[uuid.UUID][]*models.Chunk
}

func newFakeChunkRepo() *fakeChunkRepo {
	return &fakeChunkRepo{byDocument: make(map[uuid.UUID][]*models.Chunk)}
}

func (f *fakeChunkRepo) ReplaceForDocument(ctx context.Context, documentID uuid.UUID, chunks []*models.Chunk) error {
	f.byDocument[documentID] = chunks
	return nil
}

func (f *fakeChunkRepo) GetByDocument(ctx context.Context, documentID uuid.UUID) ([]*models.Chunk, error) {
	return f.byDocument[documentID], nil
}

func (f *fakeChunkRepo) ListPendingEmbedding(ctx context.Context, limit int) ([]*models.Chunk, error) {
	return nil, nil
}

func (f *fakeChunkRepo) SetEmbedding(ctx context.Context, chunkID string, embedding []float32) error {
	return nil
}

func (f *fakeChunkRepo) SearchCandidates(ctx context.Context, filter *models.SearchFilter) ([]*repositories.ChunkCandidate, error) {
	return nil, nil
}

var _ repositories.ChunkRepository = (*fakeChunkRepo)(nil)

// fakeParser returns canned content per file name.
type fakeParser struct {
	content   map[string]string
	pageCount int
	err       error
}

func (f *fakeParser) Parse(ctx context.Context, fileName string, data []byte) (*parser.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	content, ok := f.content[fileName]
	if !ok {
		return nil, fmt.Errorf("no canned content for %s", fileName)
	}
	return &parser.Result{Content: content, PageCount: f.pageCount}, nil
}

var _ parser.DocumentParser = (*fakeParser)(nil)

// fakeSearch returns canned results.
type fakeSearch struct {
	results []models.SearchResult
	err     error
	lastReq search.QueryRequest
}

func (f *fakeSearch) Query(ctx context.Context, req search.QueryRequest) ([]models.SearchResult, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

var _ search.Service = (*fakeSearch)(nil)

// fakeFactRepo records copied rows per table.
type fakeFactRepo struct {
	tides     []models.TidePrediction
	events    []models.Event
	incidents []models.MaritimeIncident
	copyErr   error
}

func (f *fakeFactRepo) CopyTidePredictions(ctx context.Context, rows []models.TidePrediction) (int64, error) {
	if f.copyErr != nil {
		return 0, f.copyErr
	}
	f.tides = append(f.tides, rows...)
	return int64(len(rows)), nil
}

func (f *fakeFactRepo) CopyElectricityDemand(ctx context.Context, rows []models.ElectricityDemand) (int64, error) {
	return int64(len(rows)), nil
}

func (f *fakeFactRepo) CopyGenerationByFuel(ctx context.Context, rows []models.GenerationByFuel) (int64, error) {
	return int64(len(rows)), nil
}

func (f *fakeFactRepo) CopyRainfallObservations(ctx context.Context, rows []models.RainfallObservation) (int64, error) {
	return int64(len(rows)), nil
}

func (f *fakeFactRepo) CopyFoodPriceProducts(ctx context.Context, rows []models.FoodPriceProduct) (int64, error) {
	return int64(len(rows)), nil
}

func (f *fakeFactRepo) CopyVisitorArrivals(ctx context.Context, rows []models.VisitorArrival) (int64, error) {
	return int64(len(rows)), nil
}

func (f *fakeFactRepo) CopyIncomeStatistics(ctx context.Context, rows []models.IncomeStatistic) (int64, error) {
	return int64(len(rows)), nil
}

func (f *fakeFactRepo) CopyEvents(ctx context.Context, rows []models.Event) (int64, error) {
	if f.copyErr != nil {
		return 0, f.copyErr
	}
	f.events = append(f.events, rows...)
	return int64(len(rows)), nil
}

func (f *fakeFactRepo) CopyMaritimeIncidents(ctx context.Context, rows []models.MaritimeIncident) (int64, error) {
	f.incidents = append(f.incidents, rows...)
	return int64(len(rows)), nil
}

var _ repositories.FactRepository = (*fakeFactRepo)(nil)
