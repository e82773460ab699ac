package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"anoa.com/codediary/internal/entity"
	followRepo "anoa.com/codediary/internal/modules/follow/repository"
	follow "anoa.com/codediary/internal/modules/follow/service"
	"anoa.com/codediary/internal/modules/readstate/repository"
	"anoa.com/codediary/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	svc    ReadStateService
	author *entity.User
	viewer *entity.User
	entry  *entity.DiaryEntry
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewTestDB(t)
	follows := follow.NewFollowService(followRepo.NewFollowRepository(db))
	author := testutil.CreateUser(t, db, "author")
	viewer := testutil.CreateUser(t, db, "viewer")

	return &fixture{
		db:     db,
		svc:    NewReadStateService(repository.NewReadStateRepository(db), follows),
		author: author,
		viewer: viewer,
		entry:  testutil.CreateEntry(t, db, author, "Day one", time.Time{}),
	}
}

func TestMarkRead_FollowerCreatesOneRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.Follow(t, f.db, f.viewer, f.author)

	created, err := f.svc.MarkReadIfApplicable(ctx, &f.viewer.ID, f.entry)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.svc.MarkReadIfApplicable(ctx, &f.viewer.ID, f.entry)
	require.NoError(t, err)
	assert.False(t, created)

	assert.Equal(t, int64(1), testutil.CountReadEntries(t, f.db, f.viewer.ID))
}

func TestMarkRead_Noops(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous", func(t *testing.T) {
		f := newFixture(t)
		created, err := f.svc.MarkReadIfApplicable(ctx, nil, f.entry)
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("author", func(t *testing.T) {
		f := newFixture(t)
		created, err := f.svc.MarkReadIfApplicable(ctx, &f.author.ID, f.entry)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Zero(t, testutil.CountReadEntries(t, f.db, f.author.ID))
	})

	t.Run("non follower", func(t *testing.T) {
		f := newFixture(t)
		for i := 0; i < 3; i++ {
			created, err := f.svc.MarkReadIfApplicable(ctx, &f.viewer.ID, f.entry)
			require.NoError(t, err)
			assert.False(t, created)
		}
		assert.Zero(t, testutil.CountReadEntries(t, f.db, f.viewer.ID))
	})
}

func TestMarkRead_ConcurrentViewsResolveToOneRow(t *testing.T) {
	f := newFixture(t)
	testutil.Follow(t, f.db, f.viewer, f.author)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.MarkReadIfApplicable(context.Background(), &f.viewer.ID, f.entry)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int64(1), testutil.CountReadEntries(t, f.db, f.viewer.ID))
}

func TestReadEntryIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := repository.NewReadStateRepository(f.db)
	other := testutil.CreateEntry(t, f.db, f.author, "Day two", time.Time{})

	ids, err := repo.ReadEntryIDs(ctx, f.viewer.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = repo.Create(ctx, f.viewer.ID, f.entry.ID)
	require.NoError(t, err)

	ids, err = repo.ReadEntryIDs(ctx, f.viewer.ID, []uuid.UUID{f.entry.ID, other.ID})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.entry.ID}, ids)
}

func TestReadState_CascadesOnEntryDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := repository.NewReadStateRepository(f.db)

	_, err := repo.Create(ctx, f.viewer.ID, f.entry.ID)
	require.NoError(t, err)

	require.NoError(t, f.db.Delete(&entity.DiaryEntry{}, "id = ?", f.entry.ID).Error)
	assert.Zero(t, testutil.CountReadEntries(t, f.db, f.viewer.ID))
}
