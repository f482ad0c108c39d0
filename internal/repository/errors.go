package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateEmail is returned when an insert or update collides with the
// unique email index.
var ErrDuplicateEmail = errors.New("email already exists")

// ErrMissingReference is returned when a foreign key points at a row that
// does not exist (for example feedback on a deleted issue).
var ErrMissingReference = errors.New("referenced row does not exist")

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		if pgErr.ConstraintName == "users_email_key" {
			return ErrDuplicateEmail
		}
	case pgForeignKeyViolation:
		return ErrMissingReference
	}
	return err
}
