package persistence

import (
	"errors"

	"github.com/fla7a/backend/internal/domain/shared"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// translateError maps driver errors onto domain sentinels. Errors it does
// not recognize are returned unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	if isUniqueViolation(err) {
		return shared.ErrAlreadyExists
	}
	if hasPgCode(err, pgerrcode.StringDataRightTruncationDataException) {
		return shared.ErrValueTooLong
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return hasPgCode(err, pgerrcode.UniqueViolation)
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
