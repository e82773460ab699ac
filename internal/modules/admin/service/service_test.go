package service

import (
	"context"
	"testing"
	"time"

	"anoa.com/codediary/internal/entity"
	"anoa.com/codediary/internal/modules/admin/dto"
	userRepo "anoa.com/codediary/internal/modules/user/repository"
	userService "anoa.com/codediary/internal/modules/user/service"
	"anoa.com/codediary/internal/testutil"
	"anoa.com/codediary/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*gorm.DB, AdminService, userRepo.UserRepository) {
	db := testutil.NewTestDB(t)
	users := userRepo.NewUserRepository(db)
	auth := userService.NewAuthService(users, "secret", time.Hour)
	return db, NewAdminService(users, auth), users
}

func TestCreateUser(t *testing.T) {
	_, svc, users := newService(t)
	ctx := context.Background()
	bio := " Staff writer "

	res, err := svc.CreateUser(ctx, dto.CreateUserInput{
		Username: "editor",
		Email:    "editor@example.com",
		Password: "long-enough",
		IsAdmin:  true,
		Bio:      &bio,
	})
	require.NoError(t, err)
	assert.True(t, res.IsAdmin)
	require.NotNil(t, res.Bio)
	assert.Equal(t, "Staff writer", *res.Bio)

	stored, err := users.FindByUsername(ctx, "editor")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("long-enough")))
	require.NotNil(t, stored.Profile)

	all, err := svc.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDeleteUser_Cascades(t *testing.T) {
	db, svc, _ := newService(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, db, "admin")
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	testutil.Follow(t, db, bob, alice)
	testutil.Follow(t, db, alice, bob)
	entry := testutil.CreateEntry(t, db, bob, "bob's", time.Time{})
	require.NoError(t, db.Create(&entity.ReadEntry{UserID: alice.ID, EntryID: entry.ID}).Error)
	testutil.CreateEntry(t, db, alice, "alice's", time.Time{})

	require.NoError(t, svc.DeleteUser(ctx, admin.ID, alice.ID))

	for _, model := range []any{&entity.Follow{}, &entity.ReadEntry{}} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Zero(t, n)
	}
	var entries, profiles int64
	require.NoError(t, db.Model(&entity.DiaryEntry{}).Count(&entries).Error)
	require.NoError(t, db.Model(&entity.Profile{}).Count(&profiles).Error)
	assert.Equal(t, int64(1), entries)
	assert.Equal(t, int64(2), profiles)

	err := svc.DeleteUser(ctx, admin.ID, alice.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteUser_NotSelf(t *testing.T) {
	db, svc, _ := newService(t)
	admin := testutil.CreateUser(t, db, "admin")

	err := svc.DeleteUser(context.Background(), admin.ID, admin.ID)
	assert.ErrorIs(t, err, ErrDeleteSelf)
}
