package apperrors

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

var statusByCode = map[ErrorCode]int{
	CodeInternalError:      http.StatusInternalServerError,
	CodeDatabaseError:      http.StatusInternalServerError,
	CodeStorageError:       http.StatusInternalServerError,
	CodeNotFound:           http.StatusNotFound,
	CodeAlreadyExists:      http.StatusConflict,
	CodeValidationFailed:   http.StatusBadRequest,
	CodeConflict:           http.StatusConflict,
	CodeLimitExceeded:      http.StatusRequestEntityTooLarge,
	CodeUnsupportedType:    http.StatusUnsupportedMediaType,
	CodeTooManyRequests:    http.StatusTooManyRequests,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeForbidden:          http.StatusForbidden,
	CodeInvalidCredentials: http.StatusUnauthorized,
	CodeInvalidToken:       http.StatusUnauthorized,
}

// HTTPStatus переводит код ошибки в HTTP статус. Неизвестные коды - 500.
func HTTPStatus(code ErrorCode) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// GinErrorHandler - обработчик ошибок для Gin
type GinErrorHandler struct {
	Debug bool
}

// HandleGinError - основная логика обработки ошибок для Gin
func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}

	status := HTTPStatus(appErr.Code)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "server error", "error", err, "path", c.Request.URL.Path)
		if !h.Debug {
			appErr = New(appErr.Code, appErr.Domain, "Internal server error")
		}
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Error: appErr})
}

var defaultHandler = &GinErrorHandler{}

// SetDebug включает подробные 5xx ответы (только для development)
func SetDebug(debug bool) {
	defaultHandler = &GinErrorHandler{Debug: debug}
}

// HandleError - быстрая функция-помощник для Gin
func HandleError(c *gin.Context, err error) {
	defaultHandler.HandleGinError(c, err)
}

// AsAppError - пытается преобразовать error в *AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
