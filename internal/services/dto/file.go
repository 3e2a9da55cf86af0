package dto

import (
	"encoding/json"
	"time"

	"campus_backend/internal/models"
)

type FileResponse struct {
	ID          string          `json:"id"`
	Filename    string          `json:"filename"`
	ContentType string          `json:"content_type"`
	FileSize    int64           `json:"file_size"`
	IsPublic    bool            `json:"is_public"`
	UploaderID  string          `json:"uploader_id"`
	URL         string          `json:"url"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// FileContent - содержимое файла для отдачи клиенту
type FileContent struct {
	Filename    string
	ContentType string
	Data        []byte
}

// PublicFileURL - адрес публичной отдачи файла
func PublicFileURL(fileID string) string {
	return "/api/v1/files/public/" + fileID
}

func NewFileResponse(f *models.File) *FileResponse {
	resp := &FileResponse{
		ID:          f.ID,
		Filename:    f.Filename,
		ContentType: f.ContentType,
		FileSize:    f.FileSize,
		IsPublic:    f.IsPublic,
		UploaderID:  f.UploaderID,
		URL:         PublicFileURL(f.ID),
		CreatedAt:   f.CreatedAt,
	}
	if len(f.Metadata) > 0 {
		resp.Metadata = json.RawMessage(f.Metadata)
	}
	return resp
}
