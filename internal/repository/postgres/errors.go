package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stamprally/backend/internal/repository"
)

// mapErr translates pgx errors into the repository sentinels the
// services layer matches on.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %s", repository.ErrConflict, pgErr.Code)
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", repository.ErrDuplicate, pgErr.ConstraintName)
		case "23514": // check_violation (balance/stock floors)
			return fmt.Errorf("%w: %s", repository.ErrConflict, pgErr.ConstraintName)
		}
	}
	return err
}
