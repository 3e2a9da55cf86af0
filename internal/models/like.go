package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Like никогда не удаляется физически: unlike переводит его в inactive.
// На тройку (user_id, target_id, target_type) - уникальный индекс.
type Like struct {
	ID         string         `gorm:"type:varchar(36);primaryKey"`
	UserID     string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_like_target,priority:1"`
	TargetID   string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_like_target,priority:2;index:idx_like_target,priority:1"`
	TargetType LikeTargetType `gorm:"type:varchar(50);not null;uniqueIndex:idx_user_like_target,priority:3;index:idx_like_target,priority:2"`
	Status     LikeStatus     `gorm:"type:varchar(20);not null;index"`
	CreatedAt  time.Time      `gorm:"not null"`
	UpdatedAt  time.Time      `gorm:"not null;autoUpdateTime:false"`
}

func (Like) TableName() string {
	return "user_likes"
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

func (l *Like) IsActive() bool {
	return l.Status == LikeStatusActive
}
