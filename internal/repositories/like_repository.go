package repositories

import (
	"errors"
	"time"

	"campus_backend/internal/models"

	"gorm.io/gorm"
)

var ErrLikeNotFound = errors.New("like not found")

type LikeRepository interface {
	Create(db *gorm.DB, like *models.Like) error
	FindByKey(db *gorm.DB, userID, targetID string, targetType models.LikeTargetType) (*models.Like, error)
	UpdateStatus(db *gorm.DB, like *models.Like, status models.LikeStatus, at time.Time) error
	FindByUser(db *gorm.DB, userID string, targetType models.LikeTargetType, onlyActive bool) ([]models.Like, error)
	CountActiveByTarget(db *gorm.DB, targetID string, targetType models.LikeTargetType) (int64, error)
}

type LikeRepositoryImpl struct{}

func NewLikeRepository() LikeRepository {
	return &LikeRepositoryImpl{}
}

// Create возвращает ErrDuplicate, если тройка (user, target, type) уже занята
func (r *LikeRepositoryImpl) Create(db *gorm.DB, like *models.Like) error {
	return duplicateOr(db.Create(like).Error)
}

func (r *LikeRepositoryImpl) FindByKey(db *gorm.DB, userID, targetID string, targetType models.LikeTargetType) (*models.Like, error) {
	var like models.Like
	err := db.Where("user_id = ? AND target_id = ? AND target_type = ?", userID, targetID, targetType).
		First(&like).Error
	if err != nil {
		return nil, notFoundOr(err, ErrLikeNotFound)
	}
	return &like, nil
}

func (r *LikeRepositoryImpl) UpdateStatus(db *gorm.DB, like *models.Like, status models.LikeStatus, at time.Time) error {
	result := db.Model(&models.Like{}).
		Where("id = ?", like.ID).
		Updates(map[string]interface{}{"status": status, "updated_at": at})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLikeNotFound
	}
	like.Status = status
	like.UpdatedAt = at
	return nil
}

func (r *LikeRepositoryImpl) FindByUser(db *gorm.DB, userID string, targetType models.LikeTargetType, onlyActive bool) ([]models.Like, error) {
	query := db.Where("user_id = ? AND target_type = ?", userID, targetType)
	if onlyActive {
		query = query.Where("status = ?", models.LikeStatusActive)
	}

	var likes []models.Like
	err := query.Order("updated_at DESC").Find(&likes).Error
	return likes, err
}

func (r *LikeRepositoryImpl) CountActiveByTarget(db *gorm.DB, targetID string, targetType models.LikeTargetType) (int64, error) {
	var count int64
	err := db.Model(&models.Like{}).
		Where("target_id = ? AND target_type = ? AND status = ?", targetID, targetType, models.LikeStatusActive).
		Count(&count).Error
	return count, err
}
