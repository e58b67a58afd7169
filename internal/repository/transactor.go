package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Transactor runs fn inside one database transaction, committing when fn
// returns nil and rolling back otherwise.
type Transactor interface {
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type transactor struct {
	db *sql.DB
}

func NewTransactor(db *sql.DB) Transactor {
	return &transactor{db: db}
}

func (t *transactor) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := t.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
