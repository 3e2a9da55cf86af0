package repositories

import (
	"errors"

	"campus_backend/internal/models"

	"gorm.io/gorm"
)

var ErrFileNotFound = errors.New("file not found")

type FileRepository interface {
	Create(db *gorm.DB, file *models.File) error
	FindByID(db *gorm.DB, id string) (*models.File, error)
	FindByIDs(db *gorm.DB, ids []string) ([]models.File, error)
	Delete(db *gorm.DB, id string) error

	CreateAssociations(db *gorm.DB, associations []models.FileAssociation) error
	FindAssociations(db *gorm.DB, entityType, entityID string) ([]models.FileAssociation, error)
	FirstAssociations(db *gorm.DB, entityType string, entityIDs []string) (map[string]models.FileAssociation, error)
	DeleteAssociationsByFile(db *gorm.DB, fileID string) error
}

type FileRepositoryImpl struct{}

func NewFileRepository() FileRepository {
	return &FileRepositoryImpl{}
}

func (r *FileRepositoryImpl) Create(db *gorm.DB, file *models.File) error {
	return db.Create(file).Error
}

func (r *FileRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.File, error) {
	var file models.File
	if err := db.Where("id = ?", id).First(&file).Error; err != nil {
		return nil, notFoundOr(err, ErrFileNotFound)
	}
	return &file, nil
}

func (r *FileRepositoryImpl) FindByIDs(db *gorm.DB, ids []string) ([]models.File, error) {
	var files []models.File
	if len(ids) == 0 {
		return files, nil
	}
	err := db.Where("id IN ?", ids).Find(&files).Error
	return files, err
}

func (r *FileRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.File{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFileNotFound
	}
	return nil
}

func (r *FileRepositoryImpl) CreateAssociations(db *gorm.DB, associations []models.FileAssociation) error {
	if len(associations) == 0 {
		return nil
	}
	return db.Create(&associations).Error
}

func (r *FileRepositoryImpl) FindAssociations(db *gorm.DB, entityType, entityID string) ([]models.FileAssociation, error) {
	var associations []models.FileAssociation
	err := db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("sort_order ASC").Order("created_at ASC").
		Find(&associations).Error
	return associations, err
}

// FirstAssociations возвращает первую по (sort_order, created_at) привязку
// для каждой сущности одним запросом.
func (r *FileRepositoryImpl) FirstAssociations(db *gorm.DB, entityType string, entityIDs []string) (map[string]models.FileAssociation, error) {
	first := make(map[string]models.FileAssociation, len(entityIDs))
	if len(entityIDs) == 0 {
		return first, nil
	}

	var associations []models.FileAssociation
	err := db.Where("entity_type = ? AND entity_id IN ?", entityType, entityIDs).
		Order("entity_id").Order("sort_order ASC").Order("created_at ASC").
		Find(&associations).Error
	if err != nil {
		return nil, err
	}

	for _, a := range associations {
		if _, seen := first[a.EntityID]; !seen {
			first[a.EntityID] = a
		}
	}
	return first, nil
}

func (r *FileRepositoryImpl) DeleteAssociationsByFile(db *gorm.DB, fileID string) error {
	return db.Where("file_id = ?", fileID).Delete(&models.FileAssociation{}).Error
}
