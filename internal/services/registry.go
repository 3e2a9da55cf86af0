package services

import (
	"campus_backend/internal/email"
	"campus_backend/internal/storage"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService         AuthService
	UserService         UserService
	LikeService         LikeService
	JobService          JobService
	FileService         FileService
	NotificationService NotificationService
	EmailProvider       email.Provider
	Storage             storage.Storage
}
