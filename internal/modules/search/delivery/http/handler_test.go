package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/codediary/internal/entity"
	searchDto "anoa.com/codediary/internal/modules/search/dto"
	search "anoa.com/codediary/internal/modules/search/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubSearch struct {
	lastQuery string
	lastLimit int
	err       error
}

func (s *stubSearch) IndexEntry(*entity.DiaryEntry) error { return nil }
func (s *stubSearch) DeleteEntry(uuid.UUID) error         { return nil }

func (s *stubSearch) Search(query string, limit int) (*searchDto.SearchResult, error) {
	s.lastQuery, s.lastLimit = query, limit
	if s.err != nil {
		return nil, s.err
	}
	return &searchDto.SearchResult{Query: query, Hits: []searchDto.EntryHit{{ID: "e1", Title: "Goroutines"}}, EstimatedTotalHits: 1}, nil
}

func serve(svc search.SearchService, target string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/search", NewSearchHandler(svc).Search)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestSearchDisabled(t *testing.T) {
	w := serve(nil, "/api/search?q=go")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"search is not configured"}`, w.Body.String())
}

func TestSearchRequiresQuery(t *testing.T) {
	w := serve(&stubSearch{}, "/api/search")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchReturnsHits(t *testing.T) {
	svc := &stubSearch{}
	w := serve(svc, "/api/search?q=go&limit=5")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "go", svc.lastQuery)
	assert.Equal(t, 5, svc.lastLimit)
	assert.Contains(t, w.Body.String(), `"title":"Goroutines"`)
}

func TestSearchBackendFailure(t *testing.T) {
	w := serve(&stubSearch{err: errors.New("connection refused")}, "/api/search?q=go")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"search failed"}`, w.Body.String())
}
