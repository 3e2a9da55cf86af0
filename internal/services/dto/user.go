package dto

import "campus_backend/internal/models"

type ListUsersQuery struct {
	Role   string `form:"role" validate:"omitempty,is-user-role"`
	Search string `form:"search"`
	Skip   int    `form:"skip" validate:"min=0"`
	Limit  int    `form:"limit" validate:"min=0,max=100"`
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int64          `json:"total"`
	Skip  int            `json:"skip"`
	Limit int            `json:"limit"`
}

type UpdateRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required,is-user-role"`
}
