package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campus_backend/internal/services"
	"campus_backend/pkg/apperrors"
)

// maxThumbnailWidth - верхняя граница ?width=
const maxThumbnailWidth = 2048

type FileHandler struct {
	*BaseHandler
	fileService services.FileService
}

func NewFileHandler(base *BaseHandler, fileService services.FileService) *FileHandler {
	return &FileHandler{
		BaseHandler: base,
		fileService: fileService,
	}
}

// Upload godoc
// @Summary Загрузить файл
// @Description Изображения уменьшаются до допустимого размера; тип определяется по содержимому
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Файл"
// @Param is_public formData bool false "Публичный доступ" default(true)
// @Success 201 {object} dto.FileResponse
// @Failure 413 {object} apperrors.ErrorResponse
// @Failure 415 {object} apperrors.ErrorResponse
// @Router /files [post]
func (h *FileHandler) Upload(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		apperrors.HandleError(c, apperrors.ValidationError(map[string]string{"file": "File is required"}))
		return
	}

	isPublic := true
	if raw := c.PostForm("is_public"); raw != "" {
		if isPublic, err = strconv.ParseBool(raw); err != nil {
			apperrors.HandleError(c, apperrors.ValidationError(map[string]string{"is_public": "Must be a boolean"}))
			return
		}
	}

	file, err := h.fileService.Upload(c.Request.Context(), h.GetDB(c), actor, header, isPublic)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, file)
}

// ServeFile godoc
// @Summary Содержимое файла
// @Description Публичные файлы доступны всем. Приватные - загрузившему, администратору и владельцу вакансии, к отклику на которую файл приложен.
// @Tags files
// @Produce octet-stream
// @Param fileId path string true "ID файла"
// @Param width query int false "Ширина миниатюры (только для изображений)"
// @Success 200 {file} binary
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /files/public/{fileId} [get]
func (h *FileHandler) ServeFile(c *gin.Context) {
	width := ParseQueryInt(c, "width", 0)
	if width < 0 || width > maxThumbnailWidth {
		apperrors.HandleError(c, apperrors.ValidationError(map[string]string{"width": fmt.Sprintf("Must be between 1 and %d", maxThumbnailWidth)}))
		return
	}

	content, err := h.fileService.GetContent(c.Request.Context(), h.GetDB(c), c.Param("fileId"), h.OptionalActor(c), width)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", content.Filename))
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, content.ContentType, content.Data)
}

// GetFile godoc
// @Summary Метаданные файла
// @Tags files
// @Produce json
// @Param fileId path string true "ID файла"
// @Success 200 {object} dto.FileResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /files/{fileId} [get]
func (h *FileHandler) GetFile(c *gin.Context) {
	file, err := h.fileService.GetFile(c.Request.Context(), h.GetDB(c), c.Param("fileId"), h.OptionalActor(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, file)
}

// DeleteFile godoc
// @Summary Удалить файл
// @Description Доступно загрузившему и администраторам; привязки к сущностям удаляются
// @Tags files
// @Security BearerAuth
// @Param fileId path string true "ID файла"
// @Success 204
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /files/{fileId} [delete]
func (h *FileHandler) DeleteFile(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	if err := h.fileService.DeleteFile(c.Request.Context(), h.GetDB(c), c.Param("fileId"), actor); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
