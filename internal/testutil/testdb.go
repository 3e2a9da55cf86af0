// Package testutil собирает общие помощники для тестов: in-memory БД и фикстуры.
package testutil

import (
	"fmt"
	"path"
	"strings"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"campus_backend/internal/database"
	"campus_backend/internal/models"
)

// DefaultPassword - пароль фикстурных пользователей
const DefaultPassword = "password123"

// NewTestDB открывает отдельную in-memory SQLite базу на тест и мигрирует схему.
// Одно соединение: shared-cache база живет, пока открыт хотя бы один коннект.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// CreateUser создает активного пользователя с хешем DefaultPassword.
// Пустые username/email заполняются уникальными значениями.
func CreateUser(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	user := &models.User{
		Username:     "user_" + suffix,
		Email:        "user_" + suffix + "@campus.test",
		PasswordHash: string(hash),
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", user.Email, err)
	}
	return user
}

// CreateJob создает вакансию владельца ownerID
func CreateJob(t *testing.T, db *gorm.DB, ownerID, title string, category models.JobCategory, active bool) *models.JobOffer {
	t.Helper()

	job := &models.JobOffer{
		UserID:        ownerID,
		Title:         title,
		Description:   "Job description",
		Category:      category,
		JobType:       models.JobTypeFullTime,
		WorkplaceType: models.JobWorkplaceOnSite,
		Location:      "Campus",
		SalaryPeriod:  "year",
		CompanyName:   "Acme",
		IsActive:      active,
	}
	if err := db.Create(job).Error; err != nil {
		t.Fatalf("create job %q: %v", title, err)
	}
	return job
}

// CreateFile создает запись о PNG-файле без содержимого в хранилище
func CreateFile(t *testing.T, db *gorm.DB, uploaderID string) *models.File {
	t.Helper()
	return CreateFileWithType(t, db, uploaderID, "logo.png", "image/png")
}

// CreateFileWithType - то же, с заданным именем и MIME-типом
func CreateFileWithType(t *testing.T, db *gorm.DB, uploaderID, filename, contentType string) *models.File {
	t.Helper()

	file := &models.File{
		UploaderID:  uploaderID,
		Filename:    filename,
		ContentType: contentType,
		FileSize:    128,
		StoragePath: "files/" + uuid.NewString() + path.Ext(filename),
		StorageType: "local",
		IsPublic:    true,
	}
	if err := db.Create(file).Error; err != nil {
		t.Fatalf("create file: %v", err)
	}
	return file
}
