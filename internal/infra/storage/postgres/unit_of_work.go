package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// UnitOfWork bundles the writes of one entity (its row plus owned
// collections) into a single database transaction, ensuring atomicity.
type UnitOfWork struct {
	tx *sqlx.Tx
}

// NewUnitOfWork creates a new unit of work with an active transaction.
func (db *DB) NewUnitOfWork(ctx context.Context) (*UnitOfWork, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &UnitOfWork{tx: tx}, nil
}

// Commit commits the transaction.
func (u *UnitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("transaction already completed")
	}
	err := u.tx.Commit()
	u.tx = nil
	return err
}

// Rollback rolls back the transaction. Safe to call multiple times.
func (u *UnitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}
	err := u.tx.Rollback()
	u.tx = nil
	return err
}

// InSavepoint runs fn inside a savepoint, so one failing sub-write can be
// discarded without poisoning the rest of the transaction.
func (u *UnitOfWork) InSavepoint(ctx context.Context, name string, fn func() error) error {
	if _, err := u.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("savepoint %s: %w", name, err)
	}
	if err := fn(); err != nil {
		if _, rbErr := u.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return fmt.Errorf("rollback to savepoint %s: %w", name, rbErr)
		}
		return err
	}
	if _, err := u.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("release savepoint %s: %w", name, err)
	}
	return nil
}
