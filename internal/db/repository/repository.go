// Package repository holds the typed Postgres access layer. Every row is
// decoded into a domain struct at this boundary; nothing above it sees SQL.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repositories need. Narrowing it keeps
// the repositories testable against stubs and usable inside transactions.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const uniqueViolation = "23505"

// violatedConstraint returns the constraint name when err is a Postgres
// unique violation, or "" otherwise.
func violatedConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName
	}
	return ""
}
