package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"campus_backend/internal/auth"
	"campus_backend/internal/logger"
	"campus_backend/internal/models"
	"campus_backend/internal/repositories"
	"campus_backend/internal/services/dto"
	"campus_backend/pkg/apperrors"
)

type AuthService interface {
	Signup(ctx context.Context, db *gorm.DB, req *dto.SignupRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, db *gorm.DB, userID string) (*dto.UserResponse, error)
	SeedFirstAdmin(ctx context.Context, db *gorm.DB, email, username, password string) error
}

type authService struct {
	userRepo repositories.UserRepository
	tokens   *auth.TokenManager
}

func NewAuthService(userRepo repositories.UserRepository, tokens *auth.TokenManager) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens}
}

// Signup - самостоятельная регистрация; роль только Basic или Recruiter
func (s *authService) Signup(ctx context.Context, db *gorm.DB, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	role := req.Role
	if role == "" {
		role = models.UserRoleBasic
	}
	if !auth.IsOneOf(role, models.UserRoleBasic, models.UserRoleRecruiter) {
		return nil, apperrors.ErrInvalidRole.WithDetails(map[string]string{"role": "Must be one of: Basic, Recruiter"})
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ValidationError(map[string]string{"password": err.Error()})
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        req.Phone,
		Role:         role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(db.WithContext(ctx), user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByLogin(db.WithContext(ctx), req.Login)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.CtxWarn(ctx, "failed login attempt", "user_id", user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	return s.issue(user)
}

func (s *authService) Me(ctx context.Context, db *gorm.DB, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db.WithContext(ctx), userID)
	if err != nil {
		return nil, handleUserError(err)
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// SeedFirstAdmin создает администратора, если пользователя с таким email еще нет
func (s *authService) SeedFirstAdmin(ctx context.Context, db *gorm.DB, email, username, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	_, err := s.userRepo.FindByLogin(db.WithContext(ctx), email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	admin := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Admin",
		Role:         models.UserRoleAdmin,
		IsActive:     true,
	}
	if err := s.userRepo.Create(db.WithContext(ctx), admin); err != nil && !errors.Is(err, repositories.ErrDuplicate) {
		return err
	}

	logger.CtxInfo(ctx, "first admin created", "user_id", admin.ID, "email", email)
	return nil
}

func (s *authService) issue(user *models.User) (*dto.AuthResponse, error) {
	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
		User:        dto.NewUserResponse(user),
	}, nil
}

func handleUserError(err error) error {
	if errors.Is(err, repositories.ErrUserNotFound) {
		return apperrors.ErrUserNotFound
	}
	return apperrors.InternalError(err)
}
