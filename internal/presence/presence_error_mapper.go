package presence

import (
	"errors"

	"go-presence/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// mapRepositoryError converts store-level faults into AppErrors. Anything
// that is not a recognizable client-side condition surfaces as a
// persistence-unavailable error; retries belong to the connection layer,
// never here.
func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.ErrNotFound
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return apperror.Wrap(err, apperror.CodeConflict, "Conflicting day at work record", 409)
		case "23502", "23514":
			return apperror.Wrap(err, apperror.CodeInvalidInput, "Day at work record rejected by the store", 400)
		}
	}

	return apperror.Wrap(err, apperror.CodeServiceUnavailable, apperror.ErrPersistenceUnavailable.Message, 503)
}
