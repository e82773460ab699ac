package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/codediary/internal/entity"
	"anoa.com/codediary/internal/modules/entry/dto"
	"anoa.com/codediary/internal/modules/entry/repository"
	"anoa.com/codediary/pkg/apperror"
	commonDto "anoa.com/codediary/pkg/dto"
	"anoa.com/codediary/pkg/logger"
	"anoa.com/codediary/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const rateLimitAction = "create_entry"

var (
	ErrEntryNotFound = apperror.NotFound("diary entry not found")
	ErrNotAuthor     = apperror.Forbidden("only the author can change this entry")
	ErrInvalidDate   = apperror.Invalid("Date must be a date in YYYY-MM-DD format")
)

// ReadMarker records that a viewer opened an entry.
type ReadMarker interface {
	MarkReadIfApplicable(ctx context.Context, viewerID *uuid.UUID, entry *entity.DiaryEntry) (bool, error)
}

// EntryNotifier tells followers that an author posted.
type EntryNotifier interface {
	NotifyNewEntry(ctx context.Context, entry *entity.DiaryEntry) error
}

// EntryIndexer keeps the search index in step with the store.
type EntryIndexer interface {
	IndexEntry(entry *entity.DiaryEntry) error
	DeleteEntry(id uuid.UUID) error
}

type EntryService interface {
	Create(ctx context.Context, authorID uuid.UUID, input dto.EntryInput) (*entity.DiaryEntry, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.DiaryEntry, error)
	View(ctx context.Context, viewerID *uuid.UUID, id uuid.UUID) (*entity.DiaryEntry, error)
	GetForEdit(ctx context.Context, actorID, id uuid.UUID) (*entity.DiaryEntry, error)
	Update(ctx context.Context, actorID, id uuid.UUID, input dto.EntryInput) (*entity.DiaryEntry, error)
	Delete(ctx context.Context, actorID, id uuid.UUID) error
	ListByAuthor(ctx context.Context, authorID uuid.UUID, page int) (*dto.EntryListResult, error)
	ListRecentByAuthors(ctx context.Context, authorIDs []uuid.UUID, since time.Time) ([]*entity.DiaryEntry, error)
	CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)
}

type Options struct {
	Redis     *redis.Client
	RateLimit time.Duration
	Notifier  EntryNotifier
	Indexer   EntryIndexer
}

type entryService struct {
	repo      repository.EntryRepository
	reads     ReadMarker
	redis     *redis.Client
	rateLimit time.Duration
	notifier  EntryNotifier
	indexer   EntryIndexer
	now       func() time.Time
}

func NewEntryService(repo repository.EntryRepository, reads ReadMarker, opts Options) EntryService {
	return &entryService{
		repo:      repo,
		reads:     reads,
		redis:     opts.Redis,
		rateLimit: opts.RateLimit,
		notifier:  opts.Notifier,
		indexer:   opts.Indexer,
		now:       time.Now,
	}
}

func (s *entryService) Create(ctx context.Context, authorID uuid.UUID, input dto.EntryInput) (*entity.DiaryEntry, error) {
	date, err := s.parseDate(input.Date)
	if err != nil {
		return nil, err
	}

	if err := ratelimiter.Enforce(ctx, s.redis, authorID, rateLimitAction, s.rateLimit); err != nil {
		return nil, err
	}

	entry := &entity.DiaryEntry{
		UserID:       authorID,
		Date:         date,
		Title:        input.Title,
		Content:      input.Content,
		Technologies: input.Technologies,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		_ = ratelimiter.ClearRateLimit(ctx, s.redis, authorID, rateLimitAction)
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	created, err := s.repo.FindByID(ctx, entry.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload entry: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyNewEntry(ctx, created); err != nil {
			logger.Warn("failed to notify followers",
				zap.String("entry_id", created.ID.String()),
				zap.Error(err),
			)
		}
	}
	s.index(created)

	return created, nil
}

func (s *entryService) Get(ctx context.Context, id uuid.UUID) (*entity.DiaryEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to load entry: %w", err)
	}
	return entry, nil
}

// View loads an entry for display and records the read for followers of its
// author. The entry is returned the same way whether or not a read was recorded.
func (s *entryService) View(ctx context.Context, viewerID *uuid.UUID, id uuid.UUID) (*entity.DiaryEntry, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.reads.MarkReadIfApplicable(ctx, viewerID, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *entryService) GetForEdit(ctx context.Context, actorID, id uuid.UUID) (*entity.DiaryEntry, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.UserID != actorID {
		return nil, ErrNotAuthor
	}
	return entry, nil
}

func (s *entryService) Update(ctx context.Context, actorID, id uuid.UUID, input dto.EntryInput) (*entity.DiaryEntry, error) {
	entry, err := s.GetForEdit(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	date, err := s.parseDate(input.Date)
	if err != nil {
		return nil, err
	}

	entry.Date = date
	entry.Title = input.Title
	entry.Content = input.Content
	entry.Technologies = input.Technologies

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}

	s.index(entry)
	return entry, nil
}

func (s *entryService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if _, err := s.GetForEdit(ctx, actorID, id); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if !deleted {
		return ErrEntryNotFound
	}

	if s.indexer != nil {
		if err := s.indexer.DeleteEntry(id); err != nil {
			logger.Warn("failed to remove entry from search index",
				zap.String("entry_id", id.String()),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *entryService) ListByAuthor(ctx context.Context, authorID uuid.UUID, page int) (*dto.EntryListResult, error) {
	if page < 1 {
		page = 1
	}

	entries, total, err := s.repo.ListByAuthor(ctx, authorID, (page-1)*dto.PageSize, dto.PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	return &dto.EntryListResult{
		Entries: entries,
		Meta:    commonDto.NewPaginationMeta(page, dto.PageSize, total),
	}, nil
}

func (s *entryService) ListRecentByAuthors(ctx context.Context, authorIDs []uuid.UUID, since time.Time) ([]*entity.DiaryEntry, error) {
	return s.repo.ListRecentByAuthors(ctx, authorIDs, since)
}

func (s *entryService) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	return s.repo.CountByAuthor(ctx, authorID)
}

// parseDate accepts YYYY-MM-DD; an empty value means today.
func (s *entryService) parseDate(value string) (time.Time, error) {
	if value == "" {
		y, m, d := s.now().UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}

	date, err := time.Parse(entity.DateLayout, value)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return date, nil
}

func (s *entryService) index(entry *entity.DiaryEntry) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexEntry(entry); err != nil {
		logger.Warn("failed to index entry",
			zap.String("entry_id", entry.ID.String()),
			zap.Error(err),
		)
	}
}
