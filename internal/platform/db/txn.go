package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const connKey contextKey = "db_conn"

// Conn is the query surface repositories need. Both *pgxpool.Pool and
// pgx.Tx satisfy it.
type Conn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// WithConn returns a context carrying the given connection. Repositories
// prefer it over their pool, so a service can run several repository calls
// on one transaction.
func WithConn(ctx context.Context, c Conn) context.Context {
	return context.WithValue(ctx, connKey, c)
}

// ConnFromContext retrieves the connection placed by WithConn, or nil.
func ConnFromContext(ctx context.Context) Conn {
	c, _ := ctx.Value(connKey).(Conn)
	return c
}

// Transactor binds a pool to InTx so a service can group repository calls
// into one transaction without depending on pgxpool.
type Transactor struct {
	pool *pgxpool.Pool
}

func NewTransactor(pool *pgxpool.Pool) *Transactor {
	return &Transactor{pool: pool}
}

func (t *Transactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return InTx(ctx, t.pool, fn)
}

// InTx runs fn inside a transaction. The transaction is attached to the
// context passed to fn, so repository calls made with that context share it.
// Rolls back on error or panic, commits otherwise.
func InTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(WithConn(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
