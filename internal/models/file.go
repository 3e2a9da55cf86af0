package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOC  = "application/msword"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// IsCVContentType - резюме принимается только как PDF, DOC или DOCX
func IsCVContentType(contentType string) bool {
	switch contentType {
	case ContentTypePDF, ContentTypeDOC, ContentTypeDOCX:
		return true
	}
	return false
}

type File struct {
	BaseModel
	UploaderID  string `gorm:"type:varchar(36);not null;index"`
	Filename    string `gorm:"type:varchar(255);not null"`
	ContentType string `gorm:"type:varchar(100);not null"`
	FileSize    int64  `gorm:"not null"`
	StoragePath string `gorm:"type:varchar(500);not null"`
	StorageType string `gorm:"type:varchar(20);not null"`
	IsPublic    bool   `gorm:"not null"`
	Metadata    datatypes.JSON
}

// FileAssociation привязывает загруженный файл к любой сущности
// (entity_type, entity_id) с категорией и порядком.
type FileAssociation struct {
	ID           string `gorm:"type:varchar(36);primaryKey"`
	FileID       string `gorm:"type:varchar(36);not null;index"`
	EntityType   string `gorm:"type:varchar(50);not null;index:idx_file_assoc_entity,priority:1"`
	EntityID     string `gorm:"type:varchar(36);not null;index:idx_file_assoc_entity,priority:2"`
	Order        int    `gorm:"column:sort_order;not null"`
	Category     string `gorm:"type:varchar(50)"`
	FileMetadata datatypes.JSON
	CreatedAt    time.Time `gorm:"not null"`

	File *File `gorm:"foreignKey:FileID"`
}

func (a *FileAssociation) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
