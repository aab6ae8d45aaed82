package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/99minutos/client-contracts/internal/core/domain"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// conflictMessages maps unique constraints to the message returned to callers.
var conflictMessages = map[string]string{
	"clients_email_key":              "email already in use",
	"clients_company_identifier_key": "company identifier already in use",
	"users_username_key":             "username already in use",
}

// translate maps driver errors onto domain error kinds. notFound, when set,
// replaces pgx.ErrNoRows.
func translate(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case uniqueViolation:
		msg, ok := conflictMessages[pgErr.ConstraintName]
		if !ok {
			msg = "unique constraint " + pgErr.ConstraintName
		}
		return fmt.Errorf("%w: %s", domain.ErrConflict, msg)
	case foreignKeyViolation:
		return fmt.Errorf("%w: referenced record does not exist", domain.ErrValidation)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
