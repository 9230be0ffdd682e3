package base

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SQLSTATE codes the repositories translate.
const (
	codeExclusionViolation  = "23P01"
	codeForeignKeyViolation = "23503"
)

// Querier is satisfied by both the pool and a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type txKey struct{}

// Repository is the shared base of the table repositories. Calls made with
// a context returned by InTx run inside that transaction.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

func (r *Repository) conn(ctx context.Context) Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return r.pool
}

// QueryRow runs a query returning at most one row.
func (r *Repository) QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row {
	return r.conn(ctx).QueryRow(ctx, query, args...)
}

// Query runs a query returning many rows.
func (r *Repository) Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error) {
	return r.conn(ctx).Query(ctx, query, args...)
}

// ExecAffected runs a command and returns the number of affected rows.
func (r *Repository) ExecAffected(ctx context.Context, query string, args ...interface{}) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// InTx runs fn in a transaction. Nested calls reuse the outer transaction.
func (r *Repository) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// IsNotFound reports whether err is "no rows".
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// ExclusionConstraint returns the name of the violated exclusion
// constraint, if err is one.
func ExclusionConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeExclusionViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// IsForeignKeyViolation reports whether err references a missing row.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation
}
