package services

import (
	"context"

	"gorm.io/gorm"

	"campus_backend/internal/auth"
	"campus_backend/internal/logger"
	"campus_backend/internal/models"
	"campus_backend/internal/repositories"
	"campus_backend/internal/services/dto"
	"campus_backend/pkg/apperrors"
)

type UserService interface {
	GetUser(ctx context.Context, db *gorm.DB, userID string) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, db *gorm.DB, query dto.ListUsersQuery) (*dto.UserListResponse, error)
	UpdateRole(ctx context.Context, db *gorm.DB, actor dto.Actor, userID string, role models.UserRole) (*dto.UserResponse, error)
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetUser(ctx context.Context, db *gorm.DB, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db.WithContext(ctx), userID)
	if err != nil {
		return nil, handleUserError(err)
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *userService) ListUsers(ctx context.Context, db *gorm.DB, query dto.ListUsersQuery) (*dto.UserListResponse, error) {
	skip, limit := normalizePage(query.Skip, query.Limit)

	users, total, err := s.userRepo.FindWithFilter(db.WithContext(ctx), repositories.UserFilter{
		Role:   models.UserRole(query.Role),
		Search: query.Search,
		Offset: skip,
		Limit:  limit,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.UserListResponse{Users: make([]dto.UserResponse, 0, len(users)), Total: total, Skip: skip, Limit: limit}
	for i := range users {
		resp.Users = append(resp.Users, dto.NewUserResponse(&users[i]))
	}
	return resp, nil
}

// UpdateRole - только Admin; снять роль с самого себя нельзя
func (s *userService) UpdateRole(ctx context.Context, db *gorm.DB, actor dto.Actor, userID string, role models.UserRole) (*dto.UserResponse, error) {
	if !auth.IsAdmin(actor.Role) {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if _, ok := auth.ParseRole(string(role)); !ok {
		return nil, apperrors.ErrInvalidRole
	}
	if actor.ID == userID && role != models.UserRoleAdmin {
		return nil, apperrors.NewForbiddenError("Admins cannot demote themselves")
	}

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.userRepo.UpdateRole(tx, userID, role); err != nil {
		return nil, handleUserError(err)
	}
	user, err := s.userRepo.FindByID(tx, userID)
	if err != nil {
		return nil, handleUserError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user role changed", "user_id", userID, "role", role, "actor_id", actor.ID)
	resp := dto.NewUserResponse(user)
	return &resp, nil
}
