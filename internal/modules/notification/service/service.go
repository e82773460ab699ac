package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"anoa.com/codediary/internal/entity"
	"anoa.com/codediary/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RecencyWindow bounds how old an entry can be and still count as new.
const RecencyWindow = 24 * time.Hour

// Channel returns the pub/sub channel carrying new-entry hints for a user.
func Channel(userID uuid.UUID) string {
	return fmt.Sprintf("user_new_entries:%s", userID.String())
}

type FollowGraph interface {
	FolloweesOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	FollowersOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type RecentEntries interface {
	ListRecentByAuthors(ctx context.Context, authorIDs []uuid.UUID, since time.Time) ([]*entity.DiaryEntry, error)
}

type ReadLookup interface {
	ReadEntryIDs(ctx context.Context, viewerID uuid.UUID, entryIDs []uuid.UUID) ([]uuid.UUID, error)
}

type NotificationService interface {
	HasUnread(ctx context.Context, viewerID *uuid.UUID) (bool, error)
	NotifyNewEntry(ctx context.Context, entry *entity.DiaryEntry) error
}

// NewEntryHint is published to followers when an author posts. It only
// prompts clients to poll again; HasUnread stays the source of truth.
type NewEntryHint struct {
	Type      string    `json:"type"`
	EntryID   uuid.UUID `json:"entry_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

type notificationService struct {
	follows     FollowGraph
	entries     RecentEntries
	reads       ReadLookup
	redisClient *redis.Client
	now         func() time.Time
}

func NewNotificationService(follows FollowGraph, entries RecentEntries, reads ReadLookup, redisClient *redis.Client) NotificationService {
	return newNotificationService(follows, entries, reads, redisClient, time.Now)
}

func newNotificationService(follows FollowGraph, entries RecentEntries, reads ReadLookup, redisClient *redis.Client, now func() time.Time) *notificationService {
	return &notificationService{
		follows:     follows,
		entries:     entries,
		reads:       reads,
		redisClient: redisClient,
		now:         now,
	}
}

// HasUnread reports whether any author the viewer follows created an entry
// within RecencyWindow that the viewer has not opened. It is recomputed on
// every call and never writes.
func (s *notificationService) HasUnread(ctx context.Context, viewerID *uuid.UUID) (bool, error) {
	if viewerID == nil {
		return false, nil
	}

	followees, err := s.follows.FolloweesOf(ctx, *viewerID)
	if err != nil {
		return false, fmt.Errorf("failed to load followees: %w", err)
	}
	if len(followees) == 0 {
		return false, nil
	}

	since := s.now().UTC().Add(-RecencyWindow)
	recent, err := s.entries.ListRecentByAuthors(ctx, followees, since)
	if err != nil {
		return false, fmt.Errorf("failed to load recent entries: %w", err)
	}
	if len(recent) == 0 {
		return false, nil
	}

	ids := make([]uuid.UUID, 0, len(recent))
	for _, e := range recent {
		ids = append(ids, e.ID)
	}

	readIDs, err := s.reads.ReadEntryIDs(ctx, *viewerID, ids)
	if err != nil {
		return false, fmt.Errorf("failed to load read entries: %w", err)
	}

	read := make(map[uuid.UUID]struct{}, len(readIDs))
	for _, id := range readIDs {
		read[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := read[id]; !ok {
			return true, nil
		}
	}
	return false, nil
}

// NotifyNewEntry publishes a hint to every follower of the entry's author.
// Without Redis it does nothing.
func (s *notificationService) NotifyNewEntry(ctx context.Context, entry *entity.DiaryEntry) error {
	if s.redisClient == nil {
		return nil
	}

	followers, err := s.follows.FollowersOf(ctx, entry.UserID)
	if err != nil {
		return fmt.Errorf("failed to load followers: %w", err)
	}
	if len(followers) == 0 {
		return nil
	}

	payload, err := json.Marshal(NewEntryHint{
		Type:      "new_entry",
		EntryID:   entry.ID,
		AuthorID:  entry.UserID,
		Author:    entry.User.Username,
		CreatedAt: entry.CreatedAt,
	})
	if err != nil {
		return err
	}

	pipe := s.redisClient.Pipeline()
	for _, followerID := range followers {
		pipe.Publish(ctx, Channel(followerID), payload)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish new entry hints: %w", err)
	}

	logger.Debug("published new entry hints",
		zap.String("entry_id", entry.ID.String()),
		zap.Int("followers", len(followers)),
	)
	return nil
}
