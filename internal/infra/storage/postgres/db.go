// Package postgres is the PostgreSQL implementation of the entity store,
// backed by sqlx over the pgx stdlib driver.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx via database/sql
	"github.com/jmoiron/sqlx"
)

// Config holds PostgreSQL connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// DB wraps the PostgreSQL connection.
type DB struct {
	*sqlx.DB
}

// NewDB creates a new database connection.
func NewDB(ctx context.Context, cfg Config) (*DB, error) {
	db, err := sqlx.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	} else {
		db.SetMaxOpenConns(10)
	}
	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(cfg.MinConns)
	} else {
		db.SetMaxIdleConns(2)
	}
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Health checks if the database is healthy.
func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}

// SQLSTATE class 23 is integrity_constraint_violation; 23503 specifically is
// foreign_key_violation.
const (
	sqlstateFKViolation    = "23503"
	sqlstateIntegrityClass = "23"
)

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlstateFKViolation
}

// IsIntegrityViolation reports whether err is any integrity constraint
// violation (foreign key, unique, not-null, check).
func IsIntegrityViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && len(pgErr.Code) >= 2 && pgErr.Code[:2] == sqlstateIntegrityClass
}

// ErrorKind names the taxonomy class of a database error, for the error
// ledger. The reprocessor replays only integrity classes.
func ErrorKind(err error) string {
	switch {
	case IsForeignKeyViolation(err):
		return "ForeignKeyViolation"
	case IsIntegrityViolation(err):
		return "IntegrityError"
	default:
		return "DatabaseError"
	}
}

// ErrorDetail extracts the server-side detail line of a database error. For
// foreign key violations this carries the referencing key and target table,
// which the reprocessor mines to schedule dependency backfills.
func ErrorDetail(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Detail
	}
	return ""
}

// wrapExec annotates a statement error with the operation and the server
// detail so the failure is traceable from the ledger alone.
func wrapExec(op string, err error) error {
	if err == nil {
		return nil
	}
	if detail := ErrorDetail(err); detail != "" {
		return fmt.Errorf("%s: %w: %s", op, err, detail)
	}
	return fmt.Errorf("%s: %w", op, err)
}
