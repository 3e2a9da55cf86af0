package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"campus_backend/internal/models"
	"campus_backend/internal/repositories"
	"campus_backend/internal/services"
	"campus_backend/internal/services/dto"
	"campus_backend/internal/testutil"
	"campus_backend/pkg/apperrors"
)

func newLikeService() services.LikeService {
	return services.NewLikeService(repositories.NewLikeRepository())
}

func actorOf(u *models.User) dto.Actor {
	return dto.Actor{ID: u.ID, Role: u.Role}
}

func TestLikeTargetIsIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newLikeService()
	ctx := context.Background()
	user := testutil.CreateUser(t, db, models.UserRoleBasic)
	targetID := uuid.NewString()

	first, err := svc.LikeTarget(ctx, db, user.ID, targetID, models.LikeTargetHousingOffer)
	require.NoError(t, err)
	second, err := svc.LikeTarget(ctx, db, user.ID, targetID, models.LikeTargetHousingOffer)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.LikeStatusActive, first.Status)
	assert.Equal(t, models.LikeStatusActive, second.Status)
	assert.True(t, first.UpdatedAt.Equal(second.UpdatedAt))
}

func TestLikeUnlikeLikeReactivatesSameRecord(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newLikeService()
	ctx := context.Background()
	user := testutil.CreateUser(t, db, models.UserRoleBasic)
	targetID := uuid.NewString()

	liked, err := svc.LikeTarget(ctx, db, user.ID, targetID, models.LikeTargetItem)
	require.NoError(t, err)
	unliked, err := svc.UnlikeTarget(ctx, db, user.ID, targetID, models.LikeTargetItem, actorOf(user))
	require.NoError(t, err)
	relike, err := svc.LikeTarget(ctx, db, user.ID, targetID, models.LikeTargetItem)
	require.NoError(t, err)

	assert.Equal(t, models.LikeStatusInactive, unliked.Status)
	assert.Equal(t, models.LikeStatusActive, relike.Status)
	assert.Equal(t, liked.ID, unliked.ID)
	assert.Equal(t, liked.ID, relike.ID)
	assert.True(t, unliked.UpdatedAt.After(liked.UpdatedAt))
	assert.True(t, relike.UpdatedAt.After(unliked.UpdatedAt))

	var count int64
	require.NoError(t, db.Model(&models.Like{}).
		Where("user_id = ? AND target_id = ? AND target_type = ?", user.ID, targetID, models.LikeTargetItem).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUnlikeWithoutLikeFails(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newLikeService()
	user := testutil.CreateUser(t, db, models.UserRoleBasic)

	_, err := svc.UnlikeTarget(context.Background(), db, user.ID, uuid.NewString(), models.LikeTargetHousingOffer, actorOf(user))
	assert.ErrorIs(t, err, apperrors.ErrLikeNotFound)
}

func TestUnlikeInactiveLikeFailsNotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newLikeService()
	ctx := context.Background()
	user := testutil.CreateUser(t, db, models.UserRoleBasic)
	targetID := uuid.NewString()

	_, err := svc.LikeTarget(ctx, db, user.ID, targetID, models.LikeTargetHousingOffer)
	require.NoError(t, err)
	_, err = svc.UnlikeTarget(ctx, db, user.ID, targetID, models.LikeTargetHousingOffer, actorOf(user))
	require.NoError(t, err)

	_, err = svc.UnlikeTarget(ctx, db, user.ID, targetID, models.LikeTargetHousingOffer, actorOf(user))
	assert.ErrorIs(t, err, apperrors.ErrLikeNotFound)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestUnlikeByAnotherUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newLikeService()
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, models.UserRoleBasic)
	other := testutil.CreateUser(t, db, models.UserRoleModerator)
	admin := testutil.CreateUser(t, db, models.UserRoleAdmin)
	targetID := uuid.NewString()

	_, err := svc.LikeTarget(ctx, db, owner.ID, targetID, models.LikeTargetJobOffer)
	require.NoError(t, err)

	_, err = svc.UnlikeTarget(ctx, db, owner.ID, targetID, models.LikeTargetJobOffer, actorOf(other))
	assert.ErrorIs(t, err, apperrors.ErrLikeForbidden)

	active, err := svc.CheckLikeStatus(ctx, db, owner.ID, targetID, models.LikeTargetJobOffer)
	require.NoError(t, err)
	assert.True(t, active)

	resp, err := svc.UnlikeTarget(ctx, db, owner.ID, targetID, models.LikeTargetJobOffer, actorOf(admin))
	require.NoError(t, err)
	assert.Equal(t, models.LikeStatusInactive, resp.Status)
}

func TestCheckLikeStatusAndCount(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newLikeService()
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, models.UserRoleBasic)
	bob := testutil.CreateUser(t, db, models.UserRoleBasic)
	targetID := uuid.NewString()

	liked, err := svc.CheckLikeStatus(ctx, db, alice.ID, targetID, models.LikeTargetHousingOffer)
	require.NoError(t, err)
	assert.False(t, liked)

	for _, u := range []*models.User{alice, bob} {
		_, err := svc.LikeTarget(ctx, db, u.ID, targetID, models.LikeTargetHousingOffer)
		require.NoError(t, err)
	}
	_, err = svc.UnlikeTarget(ctx, db, bob.ID, targetID, models.LikeTargetHousingOffer, actorOf(bob))
	require.NoError(t, err)

	count, err := svc.CountTargetLikes(ctx, db, targetID, models.LikeTargetHousingOffer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = svc.CountTargetLikes(ctx, db, targetID, models.LikeTargetItem)
	require.NoError(t, err)
	assert.Zero(t, count)

	liked, err = svc.CheckLikeStatus(ctx, db, bob.ID, targetID, models.LikeTargetHousingOffer)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestGetUserLikes(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newLikeService()
	ctx := context.Background()
	user := testutil.CreateUser(t, db, models.UserRoleBasic)
	stranger := testutil.CreateUser(t, db, models.UserRoleRecruiter)
	admin := testutil.CreateUser(t, db, models.UserRoleAdmin)

	kept, dropped := uuid.NewString(), uuid.NewString()
	_, err := svc.LikeTarget(ctx, db, user.ID, kept, models.LikeTargetHousingOffer)
	require.NoError(t, err)
	_, err = svc.LikeTarget(ctx, db, user.ID, dropped, models.LikeTargetHousingOffer)
	require.NoError(t, err)
	_, err = svc.UnlikeTarget(ctx, db, user.ID, dropped, models.LikeTargetHousingOffer, actorOf(user))
	require.NoError(t, err)

	active, err := svc.GetUserLikes(ctx, db, user.ID, models.LikeTargetHousingOffer, actorOf(user), true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, kept, active[0].TargetID)

	all, err := svc.GetUserLikes(ctx, db, user.ID, models.LikeTargetHousingOffer, actorOf(admin), false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	// последний измененный идет первым
	assert.Equal(t, dropped, all[0].TargetID)

	_, err = svc.GetUserLikes(ctx, db, user.ID, models.LikeTargetHousingOffer, actorOf(stranger), true)
	assert.ErrorIs(t, err, apperrors.ErrLikesViewForbidden)
}

func TestLikeRejectsUnknownTargetType(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newLikeService()
	user := testutil.CreateUser(t, db, models.UserRoleBasic)

	_, err := svc.LikeTarget(context.Background(), db, user.ID, uuid.NewString(), models.LikeTargetType("car"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidTargetType)
}

func TestResolveLikeTargetType(t *testing.T) {
	tt, err := services.ResolveLikeTargetType("")
	require.NoError(t, err)
	assert.Equal(t, models.LikeTargetHousingOffer, tt)

	tt, err = services.ResolveLikeTargetType("item")
	require.NoError(t, err)
	assert.Equal(t, models.LikeTargetItem, tt)

	_, err = services.ResolveLikeTargetType("Housing")
	assert.ErrorIs(t, err, apperrors.ErrInvalidTargetType)
}

// staleLikeRepo отвечает "не найдено" первые misses раз, как будто чужая вставка
// произошла между чтением и записью
type staleLikeRepo struct {
	repositories.LikeRepository
	misses int
}

func (r *staleLikeRepo) FindByKey(db *gorm.DB, userID, targetID string, targetType models.LikeTargetType) (*models.Like, error) {
	if r.misses > 0 {
		r.misses--
		return nil, repositories.ErrLikeNotFound
	}
	return r.LikeRepository.FindByKey(db, userID, targetID, targetType)
}

func TestLikeTargetLostInsertRaceReturnsExistingLike(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, models.UserRoleBasic)
	targetID := uuid.NewString()

	existing, err := newLikeService().LikeTarget(ctx, db, user.ID, targetID, models.LikeTargetJobOffer)
	require.NoError(t, err)

	repo := &staleLikeRepo{LikeRepository: repositories.NewLikeRepository(), misses: 1}
	like, err := services.NewLikeService(repo).LikeTarget(ctx, db, user.ID, targetID, models.LikeTargetJobOffer)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, like.ID)
	assert.Equal(t, models.LikeStatusActive, like.Status)
	assert.Zero(t, repo.misses)

	var rows int64
	require.NoError(t, db.Model(&models.Like{}).Where("target_id = ?", targetID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestLikeTargetRepeatedInsertRaceIsConflict(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, models.UserRoleBasic)
	targetID := uuid.NewString()

	_, err := newLikeService().LikeTarget(ctx, db, user.ID, targetID, models.LikeTargetItem)
	require.NoError(t, err)

	repo := &staleLikeRepo{LikeRepository: repositories.NewLikeRepository(), misses: 2}
	_, err = services.NewLikeService(repo).LikeTarget(ctx, db, user.ID, targetID, models.LikeTargetItem)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}
