package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/villagemarket/village-market/internal/domain/repository"
)

var (
	ErrNotFound = repository.ErrNotFound
	ErrConflict = repository.ErrConflict
)

const (
	codeUniqueViolation           = "23505"
	codeForeignKeyViolation       = "23503"
	// A malformed uuid literal can never match a row.
	codeInvalidTextRepresentation = "22P02"
)

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation, codeForeignKeyViolation:
			return ErrConflict
		case codeInvalidTextRepresentation:
			return ErrNotFound
		}
	}
	return err
}
