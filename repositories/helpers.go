package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLExecutor abstracts *sql.DB and *sql.Tx, so repository methods can run
// either on the pool or inside a caller-owned transaction.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Tx is a single unit of work spanning multiple repository calls.
type Tx interface {
	SQLExecutor
	Commit() error
	Rollback() error
}

// Database begins transactions. Production code wraps a *sql.DB pool with
// NewDatabase; tests substitute their own implementation.
type Database interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error)
}

type sqlDatabase struct {
	db *sql.DB
}

// NewDatabase wraps a sql.DB pool as a Database.
func NewDatabase(db *sql.DB) Database {
	return sqlDatabase{db: db}
}

func (d sqlDatabase) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}
