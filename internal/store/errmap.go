package store

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// User-facing store errors. Handlers surface these messages verbatim.
var (
	ErrNotFound   = errors.New("The requested resource does not exist")
	ErrDuplicate  = errors.New("This record already exists")
	ErrReferenced = errors.New("Cannot delete — this record is referenced by other data")
	ErrOverlap    = errors.New("time conflicts with an existing session for this trainer")
)

// SQLSTATE codes of interest.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeExclusionViolation  = "23P01"
	codeUndefinedTable      = "42P01"
	codeUndefinedColumn     = "42703"
)

// translate maps known Postgres error codes onto the fixed user-facing
// errors; anything else passes through verbatim.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return ErrDuplicate
		case codeForeignKeyViolation:
			return ErrReferenced
		case codeExclusionViolation:
			return ErrOverlap
		}
	}
	return err
}

// missingSchema detects partially provisioned deployments (table or column
// not migrated yet); list queries treat these as "no data".
func missingSchema(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUndefinedTable || pgErr.Code == codeUndefinedColumn
	}
	return false
}
