package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	e "github.com/sanayimarketi/marketplace/internal/marketplace/errors"
	"gorm.io/gorm"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// translateError maps driver and ORM errors onto the workflow error kinds.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return e.ErrNotFound
	}
	if isUniqueViolation(err) {
		return e.ErrConflict
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}
