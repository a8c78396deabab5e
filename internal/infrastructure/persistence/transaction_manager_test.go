package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionManager_CommitAndRollback(t *testing.T) {
	db, mock := newMock(t)
	tm := NewTransactionManager(db, 1)

	mock.ExpectBegin()
	mock.ExpectCommit()
	err := tm.WithTransaction(context.Background(), func(ctx context.Context) error {
		assert.NotNil(t, ExtractTx(ctx))
		return nil
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()
	boom := fmt.Errorf("boom")
	err = tm.WithTransaction(context.Background(), func(ctx context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionManager_ReadCommitted(t *testing.T) {
	db, mock := newMock(t)
	tm := NewTransactionManager(db, 1)
	require.NotNil(t, tm.opts)
	assert.Equal(t, sql.LevelReadCommitted, tm.opts.Isolation)
	assert.False(t, tm.opts.ReadOnly)

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, tm.WithTransaction(context.Background(), func(ctx context.Context) error { return nil }))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionManager_NestedJoinsOuter(t *testing.T) {
	db, mock := newMock(t)
	tm := NewTransactionManager(db, 1)

	mock.ExpectBegin()
	mock.ExpectCommit()
	err := tm.WithTransaction(context.Background(), func(outer context.Context) error {
		return tm.WithTransaction(outer, func(inner context.Context) error {
			assert.Same(t, ExtractTx(outer), ExtractTx(inner))
			return nil
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionManager_RetriesDeadlock(t *testing.T) {
	db, mock := newMock(t)
	tm := NewTransactionManager(db, 3)

	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	attempts := 0
	err := tm.WithTransaction(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts == 1 {
			return &mysql.MySQLError{Number: ErrCodeDeadlock, Message: "Deadlock found when trying to get lock"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsDeadlock(t *testing.T) {
	assert.True(t, isDeadlock(&mysql.MySQLError{Number: ErrCodeLockWait}))
	assert.True(t, isDeadlock(fmt.Errorf("wrapped: %w", &mysql.MySQLError{Number: ErrCodeDeadlock})))
	assert.False(t, isDeadlock(&mysql.MySQLError{Number: ErrCodeDuplicateKey}))
	assert.False(t, isDeadlock(nil))
	assert.True(t, isDuplicateKey(&mysql.MySQLError{Number: ErrCodeDuplicateKey}))
}
