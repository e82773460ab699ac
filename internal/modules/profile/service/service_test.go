package profile

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	entryRepo "anoa.com/codediary/internal/modules/entry/repository"
	followRepo "anoa.com/codediary/internal/modules/follow/repository"
	follow "anoa.com/codediary/internal/modules/follow/service"
	profileDto "anoa.com/codediary/internal/modules/profile/dto"
	userRepo "anoa.com/codediary/internal/modules/user/repository"
	"anoa.com/codediary/internal/testutil"
	"anoa.com/codediary/pkg/apperror"
	commonDto "anoa.com/codediary/pkg/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeStorage struct {
	uploaded []string
	deleted  []string
}

func (f *fakeStorage) UploadImage(_ context.Context, r io.Reader, folder, fileName string) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	url := "https://img.example.com/" + folder + "/" + fileName
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeStorage) DeleteImage(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

func newService(t *testing.T, store *fakeStorage) (*gorm.DB, ProfileService) {
	db := testutil.NewTestDB(t)
	follows := follow.NewFollowService(followRepo.NewFollowRepository(db))
	var svc ProfileService
	if store != nil {
		svc = NewProfileService(userRepo.NewUserRepository(db), store, follows, entryRepo.NewEntryRepository(db))
	} else {
		svc = NewProfileService(userRepo.NewUserRepository(db), nil, follows, entryRepo.NewEntryRepository(db))
	}
	return db, svc
}

func TestGetProfileByUsername(t *testing.T) {
	db, svc := newService(t, nil)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	testutil.Follow(t, db, bob, alice)
	testutil.CreateEntry(t, db, alice, "one", time.Time{})
	testutil.CreateEntry(t, db, alice, "two", time.Time{})

	res, err := svc.GetProfileByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", res.Username)
	assert.Equal(t, profileDto.ProfileStats{Followers: 1, Following: 0, Entries: 2}, res.Stats)

	_, err = svc.GetProfileByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateProfile_Bio(t *testing.T) {
	db, svc := newService(t, nil)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	bio := "  Gopher and diarist  "
	res, err := svc.UpdateProfile(ctx, alice.ID, profileDto.UpdateProfileInput{Bio: &bio}, nil)
	require.NoError(t, err)
	require.NotNil(t, res.Profile.Bio)
	assert.Equal(t, "Gopher and diarist", *res.Profile.Bio)
	assert.Empty(t, res.User.PasswordHash)

	empty := "   "
	res, err = svc.UpdateProfile(ctx, alice.ID, profileDto.UpdateProfileInput{Bio: &empty}, nil)
	require.NoError(t, err)
	assert.Nil(t, res.Profile.Bio)
}

func TestUpdateProfile_Avatar(t *testing.T) {
	store := &fakeStorage{}
	db, svc := newService(t, store)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	avatar := &commonDto.AvatarFile{Reader: strings.NewReader("png"), FileName: "me.png"}
	res, err := svc.UpdateProfile(ctx, alice.ID, profileDto.UpdateProfileInput{}, avatar)
	require.NoError(t, err)
	require.NotNil(t, res.User.AvatarURL)
	assert.Equal(t, "https://img.example.com/avatars/me.png", *res.User.AvatarURL)

	avatar = &commonDto.AvatarFile{Reader: strings.NewReader("png"), FileName: "new.png"}
	_, err = svc.UpdateProfile(ctx, alice.ID, profileDto.UpdateProfileInput{}, avatar)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img.example.com/avatars/me.png"}, store.deleted)
}

func TestUpdateProfile_AvatarWithoutStorage(t *testing.T) {
	db, svc := newService(t, nil)
	alice := testutil.CreateUser(t, db, "alice")

	avatar := &commonDto.AvatarFile{Reader: strings.NewReader("png"), FileName: "me.png"}
	_, err := svc.UpdateProfile(context.Background(), alice.ID, profileDto.UpdateProfileInput{}, avatar)
	assert.ErrorIs(t, err, apperror.ErrUnavailable)
}
