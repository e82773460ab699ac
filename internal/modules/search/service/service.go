package service

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"anoa.com/codediary/internal/entity"
	"anoa.com/codediary/internal/modules/search/dto"
	"anoa.com/codediary/pkg/logger"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	entriesIndex = "entries"
	defaultLimit = 20
)

type SearchService interface {
	IndexEntry(entry *entity.DiaryEntry) error
	DeleteEntry(id uuid.UUID) error
	Search(query string, limit int) (*dto.SearchResult, error)
}

type meiliSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
	inflight  singleflight.Group
}

// NewMeiliSearchService connects to Meilisearch and configures the entries index.
func NewMeiliSearchService(host, apiKey string) SearchService {
	client := meilisearch.New(host, meilisearch.WithAPIKey(apiKey))
	return newMeiliSearchService(client)
}

func newMeiliSearchService(client meilisearch.ServiceManager) *meiliSearchService {
	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	filterable := []string{"author", "technologies"}
	filterableInterface := make([]any, len(filterable))
	for i, v := range filterable {
		filterableInterface[i] = v
	}
	if _, err := s.client.Index(entriesIndex).UpdateFilterableAttributes(&filterableInterface); err != nil {
		logger.Warn("failed to update entries filterable attributes", zap.Error(err))
	}

	sortable := []string{"created_at", "date"}
	if _, err := s.client.Index(entriesIndex).UpdateSortableAttributes(&sortable); err != nil {
		logger.Warn("failed to update entries sortable attributes", zap.Error(err))
	}

	searchable := []string{"title", "technologies", "content", "author"}
	if _, err := s.client.Index(entriesIndex).UpdateSearchableAttributes(&searchable); err != nil {
		logger.Warn("failed to update entries searchable attributes", zap.Error(err))
	}
}

// cleanText strips markup and collapses whitespace so only readable text is indexed.
func (s *meiliSearchService) cleanText(content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	sanitized := s.sanitizer.Sanitize(content)
	clean := html.UnescapeString(sanitized)

	return strings.Join(strings.Fields(clean), " ")
}

func (s *meiliSearchService) toDoc(entry *entity.DiaryEntry) dto.EntryHit {
	tags := entry.TechList()
	cleanTags := make([]string, 0, len(tags))
	for _, t := range tags {
		if c := s.cleanText(t); c != "" {
			cleanTags = append(cleanTags, c)
		}
	}

	return dto.EntryHit{
		ID:           entry.ID.String(),
		Title:        s.cleanText(entry.Title),
		Content:      s.cleanText(entry.Content),
		Technologies: cleanTags,
		Date:         entry.DateString(),
		Author:       entry.User.Username,
		AuthorID:     entry.UserID.String(),
		CreatedAt:    entry.CreatedAt.Unix(),
	}
}

func (s *meiliSearchService) IndexEntry(entry *entity.DiaryEntry) error {
	doc := s.toDoc(entry)
	task, err := s.client.Index(entriesIndex).AddDocuments([]dto.EntryHit{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	logger.Debug("indexed entry",
		zap.String("entry_id", doc.ID),
		zap.Int64("task_uid", task.TaskUID),
	)
	return nil
}

func (s *meiliSearchService) DeleteEntry(id uuid.UUID) error {
	_, err := s.client.Index(entriesIndex).DeleteDocument(id.String())
	return err
}

// Search collapses identical concurrent queries into one Meilisearch call.
func (s *meiliSearchService) Search(query string, limit int) (*dto.SearchResult, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	v, err, _ := s.inflight.Do(fmt.Sprintf("%d:%s", limit, query), func() (any, error) {
		return s.search(query, limit)
	})
	if err != nil {
		return nil, err
	}
	return v.(*dto.SearchResult), nil
}

func (s *meiliSearchService) search(query string, limit int) (*dto.SearchResult, error) {

	raw, err := s.client.Index(entriesIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Limit: int64(limit),
		AttributesToRetrieve: []string{
			"id", "title", "content", "technologies", "date", "author", "author_id", "created_at",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var body struct {
		Hits               []dto.EntryHit `json:"hits"`
		EstimatedTotalHits int64          `json:"estimatedTotalHits"`
		ProcessingTimeMs   int64          `json:"processingTimeMs"`
	}
	if raw != nil {
		if err := json.Unmarshal(*raw, &body); err != nil {
			return nil, fmt.Errorf("failed to decode search response: %w", err)
		}
	}
	if body.Hits == nil {
		body.Hits = []dto.EntryHit{}
	}

	return &dto.SearchResult{
		Query:              query,
		Hits:               body.Hits,
		EstimatedTotalHits: body.EstimatedTotalHits,
		ProcessingTimeMs:   body.ProcessingTimeMs,
	}, nil
}

func strPtr(s string) *string {
	return &s
}
