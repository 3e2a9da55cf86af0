package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"campus_backend/internal/auth"
	"campus_backend/internal/logger"
	"campus_backend/internal/models"
	"campus_backend/internal/repositories"
	"campus_backend/internal/services/dto"
	"campus_backend/pkg/apperrors"
)

// DefaultLikeTargetType - тип цели, если клиент его не указал
const DefaultLikeTargetType = models.LikeTargetHousingOffer

// LikeService - состояния лайка: Absent -> Active <-> Inactive.
// Запись никогда не удаляется, unlike только деактивирует её.
type LikeService interface {
	LikeTarget(ctx context.Context, db *gorm.DB, userID, targetID string, targetType models.LikeTargetType) (*dto.LikeResponse, error)
	UnlikeTarget(ctx context.Context, db *gorm.DB, userID, targetID string, targetType models.LikeTargetType, actor dto.Actor) (*dto.LikeResponse, error)
	CheckLikeStatus(ctx context.Context, db *gorm.DB, userID, targetID string, targetType models.LikeTargetType) (bool, error)
	GetUserLikes(ctx context.Context, db *gorm.DB, userID string, targetType models.LikeTargetType, actor dto.Actor, onlyActive bool) ([]*dto.LikeResponse, error)
	CountTargetLikes(ctx context.Context, db *gorm.DB, targetID string, targetType models.LikeTargetType) (int64, error)
}

type likeService struct {
	likeRepo repositories.LikeRepository
	now      func() time.Time
}

func NewLikeService(likeRepo repositories.LikeRepository) LikeService {
	return &likeService{likeRepo: likeRepo, now: time.Now}
}

// ResolveLikeTargetType подставляет тип по умолчанию и проверяет значение
func ResolveLikeTargetType(raw string) (models.LikeTargetType, error) {
	if raw == "" {
		return DefaultLikeTargetType, nil
	}
	targetType := models.LikeTargetType(raw)
	if !targetType.IsValid() {
		return "", apperrors.ErrInvalidTargetType
	}
	return targetType, nil
}

func (s *likeService) LikeTarget(ctx context.Context, db *gorm.DB, userID, targetID string, targetType models.LikeTargetType) (*dto.LikeResponse, error) {
	if !targetType.IsValid() {
		return nil, apperrors.ErrInvalidTargetType
	}

	like, err := s.likeOnce(ctx, db, userID, targetID, targetType)
	if errors.Is(err, repositories.ErrDuplicate) {
		// Параллельный запрос успел создать запись: повторяем уже по существующей.
		logger.CtxDebug(ctx, "like insert lost race, re-reading", "target_id", targetID)
		like, err = s.likeOnce(ctx, db, userID, targetID, targetType)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.NewConflictError("like", "Like is being modified concurrently")
		}
		return nil, apperrors.InternalError(err)
	}
	return dto.NewLikeResponse(like), nil
}

func (s *likeService) likeOnce(ctx context.Context, db *gorm.DB, userID, targetID string, targetType models.LikeTargetType) (*models.Like, error) {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	like, err := s.likeRepo.FindByKey(tx, userID, targetID, targetType)
	switch {
	case err == nil && like.IsActive():
		return like, tx.Commit().Error

	case err == nil:
		if err := s.likeRepo.UpdateStatus(tx, like, models.LikeStatusActive, s.nextTimestamp(like.UpdatedAt)); err != nil {
			return nil, err
		}
		logger.CtxInfo(ctx, "like reactivated", "like_id", like.ID, "target_id", targetID, "target_type", targetType)

	case errors.Is(err, repositories.ErrLikeNotFound):
		now := s.timestamp()
		like = &models.Like{
			UserID:     userID,
			TargetID:   targetID,
			TargetType: targetType,
			Status:     models.LikeStatusActive,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.likeRepo.Create(tx, like); err != nil {
			return nil, err
		}
		logger.CtxInfo(ctx, "like created", "like_id", like.ID, "target_id", targetID, "target_type", targetType)

	default:
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return like, nil
}

func (s *likeService) UnlikeTarget(ctx context.Context, db *gorm.DB, userID, targetID string, targetType models.LikeTargetType, actor dto.Actor) (*dto.LikeResponse, error) {
	if !targetType.IsValid() {
		return nil, apperrors.ErrInvalidTargetType
	}

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	like, err := s.likeRepo.FindByKey(tx, userID, targetID, targetType)
	if err != nil {
		if errors.Is(err, repositories.ErrLikeNotFound) {
			return nil, apperrors.ErrLikeNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if !like.IsActive() {
		return nil, apperrors.ErrLikeNotFound
	}

	if actor.ID != like.UserID && !auth.IsAdmin(actor.Role) {
		return nil, apperrors.ErrLikeForbidden
	}

	if err := s.likeRepo.UpdateStatus(tx, like, models.LikeStatusInactive, s.nextTimestamp(like.UpdatedAt)); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "like deactivated", "like_id", like.ID, "target_id", targetID, "actor_id", actor.ID)
	return dto.NewLikeResponse(like), nil
}

func (s *likeService) CheckLikeStatus(ctx context.Context, db *gorm.DB, userID, targetID string, targetType models.LikeTargetType) (bool, error) {
	if !targetType.IsValid() {
		return false, apperrors.ErrInvalidTargetType
	}

	like, err := s.likeRepo.FindByKey(db.WithContext(ctx), userID, targetID, targetType)
	if err != nil {
		if errors.Is(err, repositories.ErrLikeNotFound) {
			return false, nil
		}
		return false, apperrors.InternalError(err)
	}
	return like.IsActive(), nil
}

func (s *likeService) GetUserLikes(ctx context.Context, db *gorm.DB, userID string, targetType models.LikeTargetType, actor dto.Actor, onlyActive bool) ([]*dto.LikeResponse, error) {
	if actor.ID != userID && !auth.IsAdmin(actor.Role) {
		return nil, apperrors.ErrLikesViewForbidden
	}
	if !targetType.IsValid() {
		return nil, apperrors.ErrInvalidTargetType
	}

	likes, err := s.likeRepo.FindByUser(db.WithContext(ctx), userID, targetType, onlyActive)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]*dto.LikeResponse, 0, len(likes))
	for i := range likes {
		result = append(result, dto.NewLikeResponse(&likes[i]))
	}
	return result, nil
}

func (s *likeService) CountTargetLikes(ctx context.Context, db *gorm.DB, targetID string, targetType models.LikeTargetType) (int64, error) {
	if !targetType.IsValid() {
		return 0, apperrors.ErrInvalidTargetType
	}

	count, err := s.likeRepo.CountActiveByTarget(db.WithContext(ctx), targetID, targetType)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

// timestamp - текущее время с точностью, которую хранят все драйверы
func (s *likeService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// nextTimestamp гарантирует строго возрастающий updated_at
func (s *likeService) nextTimestamp(prev time.Time) time.Time {
	now := s.timestamp()
	if !now.After(prev) {
		return prev.UTC().Add(time.Microsecond)
	}
	return now
}
