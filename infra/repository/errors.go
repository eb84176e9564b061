package repository

import (
	"errors"

	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// MapGormErrorToDomain converts GORM and driver errors to domain errors.
// Unmapped errors are returned unchanged.
func MapGormErrorToDomain(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrAlreadyExists
	case errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation:
		return domain.ErrAlreadyExists
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	}
	return err
}

// WrapError runs a GORM operation and maps its error.
//
//	err := WrapError(func() error {
//	    return r.db.WithContext(ctx).Create(user).Error
//	})
func WrapError(op func() error) error {
	return MapGormErrorToDomain(op())
}
