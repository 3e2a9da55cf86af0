package dto

import (
	"time"

	"campus_backend/internal/models"
)

// LikeQuery - параметры запроса для лайков; target_type по умолчанию housing_offer
type LikeQuery struct {
	TargetType string `form:"target_type" validate:"omitempty,is-like-target"`
	UserID     string `form:"user_id"`
	OnlyActive *bool  `form:"only_active"`
}

type LikeResponse struct {
	ID         string                `json:"id"`
	UserID     string                `json:"user_id"`
	TargetID   string                `json:"target_id"`
	TargetType models.LikeTargetType `json:"target_type"`
	Status     models.LikeStatus     `json:"status"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

type LikeStatusResponse struct {
	TargetID   string                `json:"target_id"`
	TargetType models.LikeTargetType `json:"target_type"`
	IsLiked    bool                  `json:"is_liked"`
}

type LikeCountResponse struct {
	TargetID   string                `json:"target_id"`
	TargetType models.LikeTargetType `json:"target_type"`
	Count      int64                 `json:"count"`
}

func NewLikeResponse(l *models.Like) *LikeResponse {
	return &LikeResponse{
		ID:         l.ID,
		UserID:     l.UserID,
		TargetID:   l.TargetID,
		TargetType: l.TargetType,
		Status:     l.Status,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}
