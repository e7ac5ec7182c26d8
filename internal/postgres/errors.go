package postgres

import (
	"errors"

	"gorm.io/gorm"

	"pier/internal/repositories"
)

// wrapError translates gorm errors into categorised repository errors.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.NotFound(op, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repositories.Conflict(op, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return repositories.MissingReference(op, err)
	default:
		return &repositories.Error{Op: op, Err: err}
	}
}
