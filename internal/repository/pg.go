package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes the repositories care about. The unique violation on
// (event_id, email) is the backstop that keeps duplicate detection atomic
// even if the in-transaction check is ever bypassed.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isInvalidUUID reports a malformed UUID literal (code 22P02). Callers treat
// a syntactically invalid id the same as an absent row.
func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
