package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the query surface shared by *sql.DB and *sql.Tx. Repository
// methods accept it so the same method serves standalone reads and writes
// enlisted in a service-managed transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

const pgErrUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation
}

// placeholders renders "$start,...,$start+count-1" for batch value lists.
func placeholders(start, count int) string {
	if count <= 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < count; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "$%d", start+i)
	}
	return b.String()
}

// WithTx runs fn inside a transaction on db. A DBTX that is already a
// transaction joins it rather than nesting. fn's error rolls the
// transaction back and is returned, with any rollback failure attached.
func WithTx(ctx context.Context, db DBTX, fn func(DBTX) error) error {
	switch conn := db.(type) {
	case *sql.Tx:
		return fn(conn)
	case *sql.DB:
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		if err := fn(tx); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
			return err
		}
		return tx.Commit()
	default:
		return errors.New("transactions require a database handle")
	}
}
