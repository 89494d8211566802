package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/apperrors"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/models"
)

func newSearchMux(svc *fakeSearchSvc) *http.ServeMux {
	mux := http.NewServeMux()
	NewSearchHandler(svc, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func postJSON(mux *http.ServeMux, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestSearchReturnsResults(t *testing.T) {
	svc := &fakeSearchSvc{results: []models.SearchResult{
		{ChunkID: "d:0", Text: "bag limit is 7", Score: 0.9, Keywords: []string{"bag-limit"}},
	}}
	mux := newSearchMux(svc)

	rec := postJSON(mux, "/api/search", `{"query":"snapper limit","limit":3,"filter":{"@eq":{"region":"auckland"}}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Results []models.SearchResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, "d:0", body.Results[0].ChunkID)

	assert.Equal(t, "snapper limit", svc.lastReq.Query)
	assert.Equal(t, 3, svc.lastReq.Limit)
	require.NotNil(t, svc.lastReq.Filter)
	assert.Equal(t, "auckland", svc.lastReq.Filter.Eq["region"])
}

func TestSearchRequiresQuery(t *testing.T) {
	rec := postJSON(newSearchMux(&fakeSearchSvc{}), "/api/search", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchRejectsUnknownFilterAttribute(t *testing.T) {
	rec := postJSON(newSearchMux(&fakeSearchSvc{}), "/api/search", `{"query":"q","filter":{"@eq":{"color":"blue"}}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "color")
}

func TestSearchUpstreamFailureIs502(t *testing.T) {
	rec := postJSON(newSearchMux(&fakeSearchSvc{err: errors.New("embedding endpoint down")}), "/api/search", `{"query":"q"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSearchOpenBreakerIs503(t *testing.T) {
	svc := &fakeSearchSvc{err: fmt.Errorf("%w: circuit breaker open", apperrors.ErrSearchUnavailable)}
	rec := postJSON(newSearchMux(svc), "/api/search", `{"query":"q"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "search_unavailable")
}

func TestSearchRejectsBadJSON(t *testing.T) {
	rec := postJSON(newSearchMux(&fakeSearchSvc{}), "/api/search", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
