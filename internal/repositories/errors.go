package repositories

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicate - нарушение уникального ключа при вставке
var ErrDuplicate = errors.New("duplicate record")

const pgUniqueViolation = "23505"

// IsUniqueViolation распознает нарушение уникальности для всех поддерживаемых драйверов.
// Основной путь - gorm.ErrDuplicatedKey (TranslateError), остальное на случай
// соединения, открытого без трансляции ошибок.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}

// notFoundOr переводит gorm.ErrRecordNotFound в доменную ошибку репозитория
func notFoundOr(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

func duplicateOr(err error) error {
	if IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}
