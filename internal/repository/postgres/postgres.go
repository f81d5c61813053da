// Package postgres implements the repositories on PostgreSQL with squirrel-built queries
// scanned by scany.
package postgres

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/jackc/pgx/v5/pgconn"

	"krushisetu/internal/repository"
)

const uniqueViolation = "23505"

func psql() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// IsNoRowsError reports whether err means the queried row does not exist.
func IsNoRowsError(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || sqlscan.NotFound(err)
}

// translate maps driver errors onto repository errors.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if IsNoRowsError(err) {
		return sql.ErrNoRows
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrConflict
	}
	return err
}

func returning(cols []string) string {
	return "RETURNING " + strings.Join(cols, ", ")
}
