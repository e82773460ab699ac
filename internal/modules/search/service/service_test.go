package service

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"anoa.com/codediary/internal/entity"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   []byte
}

type fakeMeili struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (f *fakeMeili) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: body})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if strings.HasSuffix(r.URL.Path, "/search") {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"hits": [{"id": "e1", "title": "Goroutines", "content": "learned channels", "technologies": ["Go"], "date": "2023-05-15", "author": "alice"}],
			"estimatedTotalHits": 1,
			"processingTimeMs": 2,
			"query": "go"
		}`))
		return
	}
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte(`{"taskUid": 7, "indexUid": "entries", "status": "enqueued", "type": "documentAdditionOrUpdate", "enqueuedAt": "2024-01-01T00:00:00Z"}`))
}

func (f *fakeMeili) find(method, path string) *recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.requests {
		if f.requests[i].Method == method && f.requests[i].Path == path {
			return &f.requests[i]
		}
	}
	return nil
}

func newTestService(t *testing.T) (*meiliSearchService, *fakeMeili) {
	t.Helper()
	fake := &fakeMeili{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return newMeiliSearchService(meilisearch.New(srv.URL)), fake
}

func TestCleanText(t *testing.T) {
	s := &meiliSearchService{sanitizer: bluemonday.StrictPolicy()}

	assert.Equal(t, "first second", s.cleanText("<p>first</p><p>second</p>"))
	assert.Equal(t, "a < b & c", s.cleanText("a &lt; b &amp; c"))
	assert.Equal(t, "text", s.cleanText("<script>alert(1)</script>   text"))
	assert.Equal(t, "", s.cleanText("  \n\t "))
}

func TestInitConfiguresIndex(t *testing.T) {
	_, fake := newTestService(t)

	assert.NotNil(t, fake.find(http.MethodPut, "/indexes/entries/settings/filterable-attributes"))
	assert.NotNil(t, fake.find(http.MethodPut, "/indexes/entries/settings/sortable-attributes"))
	assert.NotNil(t, fake.find(http.MethodPut, "/indexes/entries/settings/searchable-attributes"))
}

func TestIndexEntry(t *testing.T) {
	s, fake := newTestService(t)

	authorID := uuid.New()
	entry := &entity.DiaryEntry{
		ID:           uuid.New(),
		UserID:       authorID,
		User:         entity.User{ID: authorID, Username: "alice"},
		Date:         time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC),
		Title:        "<b>Goroutines</b>",
		Content:      "<p>Learned about</p><p>channels</p>",
		Technologies: "Go, <i>Redis</i>, ",
		CreatedAt:    time.Date(2023, 5, 15, 10, 0, 0, 0, time.UTC),
	}

	require.NoError(t, s.IndexEntry(entry))

	req := fake.find(http.MethodPost, "/indexes/entries/documents")
	require.NotNil(t, req)

	var docs []map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, entry.ID.String(), docs[0]["id"])
	assert.Equal(t, "Goroutines", docs[0]["title"])
	assert.Equal(t, "Learned about channels", docs[0]["content"])
	assert.Equal(t, []any{"Go", "Redis"}, docs[0]["technologies"])
	assert.Equal(t, "2023-05-15", docs[0]["date"])
	assert.Equal(t, "alice", docs[0]["author"])
}

func TestDeleteEntry(t *testing.T) {
	s, fake := newTestService(t)

	id := uuid.New()
	require.NoError(t, s.DeleteEntry(id))
	assert.NotNil(t, fake.find(http.MethodDelete, "/indexes/entries/documents/"+id.String()))
}

func TestSearch(t *testing.T) {
	s, fake := newTestService(t)

	res, err := s.Search("go", 0)
	require.NoError(t, err)

	assert.Equal(t, "go", res.Query)
	assert.EqualValues(t, 1, res.EstimatedTotalHits)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "Goroutines", res.Hits[0].Title)
	assert.Equal(t, []string{"Go"}, res.Hits[0].Technologies)

	req := fake.find(http.MethodPost, "/indexes/entries/search")
	require.NotNil(t, req)
	var body map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, "go", body["q"])
	assert.EqualValues(t, defaultLimit, body["limit"])
}
