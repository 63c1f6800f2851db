package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConnector struct {
	conn *stubConn
}

func (c *stubConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c *stubConnector) Driver() driver.Driver                        { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return &stubConn{}, nil }

type stubConn struct {
	begins    int
	commits   int
	rollbacks int
}

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (c *stubConn) Close() error                        { return nil }

func (c *stubConn) Begin() (driver.Tx, error) {
	c.begins++
	return &stubTx{conn: c}, nil
}

type stubTx struct {
	conn *stubConn
}

func (t *stubTx) Commit() error   { t.conn.commits++; return nil }
func (t *stubTx) Rollback() error { t.conn.rollbacks++; return nil }

func newStubDB(t *testing.T) (*sql.DB, *stubConn) {
	t.Helper()
	conn := &stubConn{}
	db := sql.OpenDB(&stubConnector{conn: conn})
	t.Cleanup(func() { _ = db.Close() })
	return db, conn
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	db, conn := newStubDB(t)

	var got DBTX
	err := WithTx(context.Background(), db, func(tx DBTX) error {
		got = tx
		return nil
	})

	require.NoError(t, err)
	assert.IsType(t, &sql.Tx{}, got)
	assert.Equal(t, 1, conn.begins)
	assert.Equal(t, 1, conn.commits)
	assert.Zero(t, conn.rollbacks)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db, conn := newStubDB(t)

	boom := errors.New("boom")
	err := WithTx(context.Background(), db, func(DBTX) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, conn.rollbacks)
	assert.Zero(t, conn.commits)
}

func TestWithTxJoinsExistingTransaction(t *testing.T) {
	db, conn := newStubDB(t)
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	var got DBTX
	require.NoError(t, WithTx(context.Background(), tx, func(inner DBTX) error {
		got = inner
		return nil
	}))

	assert.Same(t, tx, got)
	// Joining must not commit on behalf of the owner.
	assert.Zero(t, conn.commits)
}

func TestWithTxRejectsNilHandle(t *testing.T) {
	assert.Error(t, WithTx(context.Background(), nil, func(DBTX) error { return nil }))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$1,$2,$3", placeholders(1, 3))
	assert.Equal(t, "$8,$9", placeholders(8, 2))
	assert.Equal(t, "", placeholders(1, 0))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("plain")))
}
