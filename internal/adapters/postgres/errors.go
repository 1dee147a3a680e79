package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/samirrijal/devcamper/internal/core/domain"
)

// SQLSTATE codes mapped onto the domain taxonomy.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgNotNullViolation     = "23502"
	pgCheckViolation       = "23514"
	pgStringTooLong        = "22001"
	pgInvalidTextRepresent = "22P02"
)

// mapErr translates driver errors into domain errors. Anything it does not
// recognise is returned wrapped with op for the upstream path.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return domain.Conflict("Duplicate field value entered")
		case pgForeignKeyViolation:
			return domain.NotFound("Referenced resource does not exist")
		case pgNotNullViolation, pgCheckViolation, pgStringTooLong, pgInvalidTextRepresent:
			return domain.Invalid("%s", pgErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
