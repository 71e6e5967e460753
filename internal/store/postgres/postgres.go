// Package postgres implements the store ports on PostgreSQL via sqlx.
package postgres

import (
	"database/sql"
	"errors"

	"digilib-backend-go/internal/store"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

type DB struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *DB {
	return &DB{db: db}
}

var (
	_ store.Users     = (*DB)(nil)
	_ store.Books     = (*DB)(nil)
	_ store.Downloads = (*DB)(nil)
	_ store.Borrows   = (*DB)(nil)
	_ store.Stats     = (*DB)(nil)
)

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}

func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
