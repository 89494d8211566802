package handlers

import (
	"context"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/models"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/search"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/services"
)

type fakeIngestion struct {
	result  *services.IngestResult
	doc     *models.Document
	docs    []*models.Document
	err     error
	lastID  string
	lastSta models.DocumentStatus
}

func (f *fakeIngestion) IngestStage(ctx context.Context) (*services.IngestResult, error) {
	return f.result, f.err
}

func (f *fakeIngestion) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	f.lastID = id
	return f.doc, f.err
}

func (f *fakeIngestion) ListDocuments(ctx context.Context, status models.DocumentStatus) ([]*models.Document, error) {
	f.lastSta = status
	return f.docs, f.err
}

var _ services.IngestionService = (*fakeIngestion)(nil)

type fakeSearchSvc struct {
	results []models.SearchResult
	err     error
	lastReq search.QueryRequest
}

func (f *fakeSearchSvc) Query(ctx context.Context, req search.QueryRequest) ([]models.SearchResult, error) {
	f.lastReq = req
	return f.results, f.err
}

var _ search.Service = (*fakeSearchSvc)(nil)

type fakeAnswers struct {
	answer  *services.Answer
	err     error
	lastReq services.AnswerRequest
}

func (f *fakeAnswers) Ask(ctx context.Context, req services.AnswerRequest) (*services.Answer, error) {
	f.lastReq = req
	return f.answer, f.err
}

var _ services.AnswerService = (*fakeAnswers)(nil)

type fakeDatasets struct {
	report    *models.LoadReport
	err       error
	lastTheme string
	lastPath  string
}

func (f *fakeDatasets) LoadTheme(ctx context.Context, theme, path string) (*models.LoadReport, error) {
	f.lastTheme = theme
	f.lastPath = path
	return f.report, f.err
}

func (f *fakeDatasets) Themes() []string {
	return []string{"events", "tide"}
}

var _ services.DatasetService = (*fakeDatasets)(nil)

type fakeQueries struct {
	result  *services.QueryResult
	err     error
	lastReq services.QueryRequest
}

func (f *fakeQueries) Execute(ctx context.Context, req services.QueryRequest) (*services.QueryResult, error) {
	f.lastReq = req
	return f.result, f.err
}

var _ services.QueryService = (*fakeQueries)(nil)
