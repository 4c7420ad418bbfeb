package service

import (
	"context"
	"testing"

	"anoa.com/communityforum/internal/dto"
	"anoa.com/communityforum/internal/model"
	"anoa.com/communityforum/internal/repository"
	"anoa.com/communityforum/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type threadFixture struct {
	db         *gorm.DB
	svc        ThreadService
	threadRepo repository.ThreadRepository
	userRepo   repository.UserRepository
	member     *model.User
}

func newThreadFixture(t *testing.T) *threadFixture {
	t.Helper()

	db := setupTestDB(t)
	userRepo := repository.NewUserRepository(db)
	threadRepo := repository.NewThreadRepository(db)

	return &threadFixture{
		db:         db,
		svc:        NewThreadService(threadRepo, userRepo, nil),
		threadRepo: threadRepo,
		userRepo:   userRepo,
		member:     mustCreateUser(t, userRepo, "member", model.RoleCommunityMember),
	}
}

func TestCreateThreadDefaults(t *testing.T) {
	f := newThreadFixture(t)

	resp, err := f.svc.CreateThread(context.Background(), f.member.ID, dto.CreateThreadRequest{
		Title:   "hello world",
		Content: "first post",
		Tags:    []string{"intro", "meta"},
	})
	require.NoError(t, err)

	assert.True(t, resp.IsPublic)
	assert.False(t, resp.IsLocked)
	assert.Equal(t, 0, resp.Views)
	assert.Equal(t, 0, resp.CommentsCount)
	assert.Equal(t, []string{"intro", "meta"}, resp.Tags)
	assert.Equal(t, "member", resp.Author)
}

func TestCreateThreadRequiresPostPermission(t *testing.T) {
	f := newThreadFixture(t)
	guest := mustCreateUser(t, f.userRepo, "visitor", model.RoleGuest)

	_, err := f.svc.CreateThread(context.Background(), guest.ID, dto.CreateThreadRequest{
		Title: "nope", Content: "forbidden",
	})
	assert.ErrorIs(t, err, apperror.ErrInsufficientPermission)
}

func TestCreateThreadPermissionIsAFlagNotARole(t *testing.T) {
	f := newThreadFixture(t)
	ctx := context.Background()

	// Revoking the flag blocks posting even though the role is unchanged.
	f.member.Grants.CanPost = false
	require.NoError(t, f.userRepo.Update(ctx, f.member))

	_, err := f.svc.CreateThread(ctx, f.member.ID, dto.CreateThreadRequest{
		Title: "still member", Content: "but cannot post",
	})
	assert.ErrorIs(t, err, apperror.ErrInsufficientPermission)
}

func TestModerateThread(t *testing.T) {
	f := newThreadFixture(t)
	ctx := context.Background()

	thread := mustCreateThread(t, f.threadRepo, f.member, "to moderate")
	mod := mustCreateUser(t, f.userRepo, "mod", model.RoleModerator)

	locked := true
	hidden := false
	require.NoError(t, f.svc.ModerateThread(ctx, mod.ID, thread.ID, dto.ModerateThreadRequest{
		IsLocked: &locked,
		IsPublic: &hidden,
	}))

	stored, err := f.threadRepo.FindByID(ctx, thread.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsLocked)
	assert.False(t, stored.IsPublic)
}

func TestModerateThreadRequiresPermission(t *testing.T) {
	f := newThreadFixture(t)
	thread := mustCreateThread(t, f.threadRepo, f.member, "locked down")

	locked := true
	err := f.svc.ModerateThread(context.Background(), f.member.ID, thread.ID, dto.ModerateThreadRequest{
		IsLocked: &locked,
	})
	assert.ErrorIs(t, err, apperror.ErrInsufficientPermission)
}

func TestModerateMissingThread(t *testing.T) {
	f := newThreadFixture(t)
	mod := mustCreateUser(t, f.userRepo, "mod", model.RoleModerator)

	locked := true
	err := f.svc.ModerateThread(context.Background(), mod.ID, uuid.New(), dto.ModerateThreadRequest{
		IsLocked: &locked,
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestToggleLikeIsSetBased(t *testing.T) {
	f := newThreadFixture(t)
	ctx := context.Background()

	thread := mustCreateThread(t, f.threadRepo, f.member, "likable")
	other := mustCreateUser(t, f.userRepo, "other", model.RoleCommunityMember)

	resp, err := f.svc.ToggleLike(ctx, f.member.ID, thread.ID)
	require.NoError(t, err)
	assert.True(t, resp.Liked)
	assert.Equal(t, int64(1), resp.LikesCount)

	resp, err = f.svc.ToggleLike(ctx, other.ID, thread.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.LikesCount)

	// Second toggle by the same user removes the like instead of
	// counting it twice.
	resp, err = f.svc.ToggleLike(ctx, f.member.ID, thread.ID)
	require.NoError(t, err)
	assert.False(t, resp.Liked)
	assert.Equal(t, int64(1), resp.LikesCount)
}

func TestGetThreadRecordsView(t *testing.T) {
	f := newThreadFixture(t)
	ctx := context.Background()

	thread := mustCreateThread(t, f.threadRepo, f.member, "viewed")

	// Without redis the view goes straight to the column.
	_, err := f.svc.GetThread(ctx, thread.ID, f.member.ID)
	require.NoError(t, err)
	_, err = f.svc.GetThread(ctx, thread.ID, f.member.ID)
	require.NoError(t, err)

	stored, err := f.threadRepo.FindByID(ctx, thread.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Views)
}

func TestGetMissingThread(t *testing.T) {
	f := newThreadFixture(t)

	_, err := f.svc.GetThread(context.Background(), uuid.New(), f.member.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
