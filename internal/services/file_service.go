package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"campus_backend/internal/auth"
	"campus_backend/internal/imageprocessor"
	"campus_backend/internal/logger"
	"campus_backend/internal/models"
	"campus_backend/internal/repositories"
	"campus_backend/internal/services/dto"
	"campus_backend/internal/storage"
	"campus_backend/pkg/apperrors"
)

// UploadConfig - ограничения на загружаемые файлы
type UploadConfig struct {
	MaxSize      int64
	AllowedTypes []string
}

type FileService interface {
	Upload(ctx context.Context, db *gorm.DB, actor dto.Actor, file *multipart.FileHeader, isPublic bool) (*dto.FileResponse, error)
	GetFile(ctx context.Context, db *gorm.DB, fileID string, viewer *dto.Actor) (*dto.FileResponse, error)
	GetContent(ctx context.Context, db *gorm.DB, fileID string, viewer *dto.Actor, width int) (*dto.FileContent, error)
	DeleteFile(ctx context.Context, db *gorm.DB, fileID string, actor dto.Actor) error
}

type fileService struct {
	fileRepo  repositories.FileRepository
	jobRepo   repositories.JobRepository
	storage   storage.Storage
	processor *imageprocessor.Processor
	config    UploadConfig
	now       func() time.Time
}

func NewFileService(
	fileRepo repositories.FileRepository,
	jobRepo repositories.JobRepository,
	store storage.Storage,
	processor *imageprocessor.Processor,
	config UploadConfig,
) FileService {
	return &fileService{
		fileRepo:  fileRepo,
		jobRepo:   jobRepo,
		storage:   store,
		processor: processor,
		config:    config,
		now:       time.Now,
	}
}

type imageMetadata struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *fileService) Upload(ctx context.Context, db *gorm.DB, actor dto.Actor, header *multipart.FileHeader, isPublic bool) (*dto.FileResponse, error) {
	if header.Size > s.config.MaxSize {
		return nil, apperrors.ErrFileTooLarge
	}

	src, err := header.Open()
	if err != nil {
		return nil, apperrors.NewBadRequestError("Failed to open uploaded file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, s.config.MaxSize+1))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if int64(len(data)) > s.config.MaxSize {
		return nil, apperrors.ErrFileTooLarge
	}

	contentType := detectContentType(header, data)
	if !s.isAllowed(contentType) {
		return nil, apperrors.ErrInvalidFileType.WithDetails(map[string]string{"content_type": contentType})
	}

	var metadata datatypes.JSON
	if imageprocessor.IsImageType(contentType) && s.processor != nil {
		processed, err := s.processor.Normalize(data)
		if err != nil {
			return nil, apperrors.ErrInvalidFileType.WithError(err)
		}
		data, contentType = processed.Data, processed.ContentType
		raw, _ := json.Marshal(imageMetadata{Width: processed.Width, Height: processed.Height})
		metadata = datatypes.JSON(raw)
	}

	file := &models.File{
		UploaderID:  actor.ID,
		Filename:    sanitizeFilename(header.Filename),
		ContentType: contentType,
		FileSize:    int64(len(data)),
		StoragePath: s.storagePath(header.Filename),
		StorageType: s.storage.Type(),
		IsPublic:    isPublic,
		Metadata:    metadata,
	}

	if err := s.storage.Save(ctx, file.StoragePath, bytes.NewReader(data), contentType); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorageError, "file", "Failed to store file")
	}

	if err := s.fileRepo.Create(db.WithContext(ctx), file); err != nil {
		if delErr := s.storage.Delete(ctx, file.StoragePath); delErr != nil {
			logger.CtxWithError(ctx, "failed to remove orphaned object", delErr, "path", file.StoragePath)
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "file uploaded", "file_id", file.ID, "size", file.FileSize, "content_type", contentType)
	return dto.NewFileResponse(file), nil
}

func (s *fileService) GetFile(ctx context.Context, db *gorm.DB, fileID string, viewer *dto.Actor) (*dto.FileResponse, error) {
	file, err := s.findReadable(ctx, db, fileID, viewer)
	if err != nil {
		return nil, err
	}
	return dto.NewFileResponse(file), nil
}

// GetContent отдает содержимое; width > 0 уменьшает изображения до миниатюры
func (s *fileService) GetContent(ctx context.Context, db *gorm.DB, fileID string, viewer *dto.Actor, width int) (*dto.FileContent, error) {
	file, err := s.findReadable(ctx, db, fileID, viewer)
	if err != nil {
		return nil, err
	}

	rc, err := s.storage.Get(ctx, file.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			logger.CtxWarn(ctx, "file record without stored object", "file_id", file.ID, "path", file.StoragePath)
			return nil, apperrors.ErrFileNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.CodeStorageError, "file", "Failed to read file")
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorageError, "file", "Failed to read file")
	}

	content := &dto.FileContent{Filename: file.Filename, ContentType: file.ContentType, Data: data}
	if width > 0 && imageprocessor.IsImageType(file.ContentType) && s.processor != nil {
		thumb, err := s.processor.Thumbnail(data, width)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		content.Data, content.ContentType = thumb.Data, thumb.ContentType
	}
	return content, nil
}

func (s *fileService) DeleteFile(ctx context.Context, db *gorm.DB, fileID string, actor dto.Actor) error {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	file, err := s.fileRepo.FindByID(tx, fileID)
	if err != nil {
		return handleFileError(err)
	}
	if file.UploaderID != actor.ID && !auth.IsAdmin(actor.Role) {
		return apperrors.ErrFileForbidden
	}

	if err := s.fileRepo.DeleteAssociationsByFile(tx, file.ID); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.fileRepo.Delete(tx, file.ID); err != nil {
		return handleFileError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.storage.Delete(ctx, file.StoragePath); err != nil {
		logger.CtxWithError(ctx, "failed to delete stored object", err, "file_id", file.ID, "path", file.StoragePath)
	}
	logger.CtxInfo(ctx, "file deleted", "file_id", file.ID, "actor_id", actor.ID)
	return nil
}

// findReadable - публичные файлы доступны всем; приватные - загрузившему, админу
// и владельцу вакансии, к отклику на которую файл приложен как CV
func (s *fileService) findReadable(ctx context.Context, db *gorm.DB, fileID string, viewer *dto.Actor) (*models.File, error) {
	file, err := s.fileRepo.FindByID(db.WithContext(ctx), fileID)
	if err != nil {
		return nil, handleFileError(err)
	}
	if file.IsPublic {
		return file, nil
	}

	// Для чужих приватных файлов отвечаем 404, чтобы не раскрывать их существование
	if viewer == nil {
		return nil, apperrors.ErrFileNotFound
	}
	if viewer.ID == file.UploaderID || auth.IsAdmin(viewer.Role) {
		return file, nil
	}

	attached, err := s.jobRepo.HasApplicationWithCV(db.WithContext(ctx), file.ID, viewer.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !attached {
		return nil, apperrors.ErrFileNotFound
	}
	return file, nil
}

func (s *fileService) isAllowed(contentType string) bool {
	for _, allowed := range s.config.AllowedTypes {
		if strings.EqualFold(allowed, contentType) {
			return true
		}
	}
	return false
}

func (s *fileService) storagePath(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	now := s.now().UTC()
	return path.Join("files", fmt.Sprintf("%04d", now.Year()), fmt.Sprintf("%02d", now.Month()), uuid.NewString()+ext)
}

// contentTypeByExt - форматы, которые сниффер видит как zip или octet-stream
var contentTypeByExt = map[string]string{
	".pdf":  models.ContentTypePDF,
	".doc":  models.ContentTypeDOC,
	".docx": models.ContentTypeDOCX,
}

// detectContentType - сниффинг содержимого; заголовок клиента и расширение
// используются, только если сниффинг не опознал формат
func detectContentType(header *multipart.FileHeader, data []byte) string {
	sniffed := http.DetectContentType(data)
	if i := strings.Index(sniffed, ";"); i >= 0 {
		sniffed = sniffed[:i]
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))

	switch sniffed {
	case "application/zip":
		// DOCX - zip-контейнер
		if ext == ".docx" {
			return models.ContentTypeDOCX
		}
	case "application/octet-stream":
		if declared := header.Header.Get("Content-Type"); declared != "" && declared != sniffed {
			return declared
		}
		if byExt, ok := contentTypeByExt[ext]; ok {
			return byExt
		}
	}
	return sniffed
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	if len(name) > 255 {
		name = name[len(name)-255:]
	}
	return name
}

func handleFileError(err error) error {
	if errors.Is(err, repositories.ErrFileNotFound) {
		return apperrors.ErrFileNotFound
	}
	return apperrors.InternalError(err)
}
