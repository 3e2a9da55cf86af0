package repositories

import (
	"errors"
	"strings"

	"campus_backend/internal/models"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByLogin(db *gorm.DB, login string) (*models.User, error)
	FindWithFilter(db *gorm.DB, filter UserFilter) ([]models.User, int64, error)
	UpdateRole(db *gorm.DB, id string, role models.UserRole) error
}

type UserFilter struct {
	Role   models.UserRole
	Search string
	Offset int
	Limit  int
}

type UserRepositoryImpl struct{}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

func (r *UserRepositoryImpl) Create(db *gorm.DB, user *models.User) error {
	return duplicateOr(db.Create(user).Error)
}

func (r *UserRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFoundOr(err, ErrUserNotFound)
	}
	return &user, nil
}

// FindByLogin ищет по email или username
func (r *UserRepositoryImpl) FindByLogin(db *gorm.DB, login string) (*models.User, error) {
	var user models.User
	login = strings.TrimSpace(login)
	err := db.Where("LOWER(email) = ? OR username = ?", strings.ToLower(login), login).First(&user).Error
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindWithFilter(db *gorm.DB, filter UserFilter) ([]models.User, int64, error) {
	query := db.Model(&models.User{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := query.Order("created_at DESC").Offset(filter.Offset).Limit(filter.Limit).Find(&users).Error
	return users, total, err
}

func (r *UserRepositoryImpl) UpdateRole(db *gorm.DB, id string, role models.UserRole) error {
	result := db.Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
