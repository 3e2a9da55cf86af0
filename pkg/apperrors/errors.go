package apperrors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
)

// AppError - основная структура ошибки приложения.
// Сервисный слой не знает про HTTP: статус вычисляется по Code в адаптере (см. handlers.go).
type AppError struct {
	Code    ErrorCode   `json:"code"`
	Domain  string      `json:"domain"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s (%v)", e.Domain, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Domain, e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по коду, поэтому errors.Is(err, ErrNotFound)
// срабатывает для любой ошибки с кодом NOT_FOUND.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !stderrors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New - базовый конструктор
func New(code ErrorCode, domain, message string) *AppError {
	return &AppError{
		Code:    code,
		Domain:  domain,
		Message: message,
	}
}

// Wrap - оборачивает существующую ошибку в AppError
func Wrap(err error, code ErrorCode, domain, message string) *AppError {
	return &AppError{
		Code:    code,
		Domain:  domain,
		Message: message,
		Err:     err,
	}
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// MarshalJSON - для кастомного вывода JSON
func (e *AppError) MarshalJSON() ([]byte, error) {
	type alias struct {
		Code    ErrorCode   `json:"code"`
		Domain  string      `json:"domain"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}
	return json.Marshal(&alias{
		Code:    e.Code,
		Domain:  e.Domain,
		Message: e.Message,
		Details: e.Details,
	})
}

// Is - обертка над стандартной функцией errors.Is
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As - обертка над стандартной функцией errors.As
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// HasCode проверяет код ошибки в цепочке
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// --- ОБЩИЕ ХЕЛПЕРЫ ---

// InternalError оборачивает неизвестную системную ошибку
func InternalError(err error) *AppError {
	return Wrap(err, CodeInternalError, "system", "Internal server error")
}

// ValidationError создает ошибку валидации с деталями
func ValidationError(details interface{}) *AppError {
	return New(CodeValidationFailed, "validation", "Validation failed").WithDetails(details)
}

func NewUnauthorizedError(message string) *AppError {
	return New(CodeUnauthorized, "auth", message)
}

func NewForbiddenError(message string) *AppError {
	return New(CodeForbidden, "auth", message)
}

func NewBadRequestError(message string) *AppError {
	return New(CodeValidationFailed, "request", message)
}

func NewNotFoundError(domain, message string) *AppError {
	return New(CodeNotFound, domain, message)
}

func NewConflictError(domain, message string) *AppError {
	return New(CodeConflict, domain, message)
}
