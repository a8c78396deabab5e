package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

// MySQL error numbers that mean the transaction may succeed if run again
const (
	ErrCodeDeadlock = 1213
	ErrCodeLockWait = 1205
)

// ErrCodeDuplicateKey is reported when a unique index rejects a write
const ErrCodeDuplicateKey = 1062

// TransactionManager handles database transactions with retry logic for deadlocks.
// Transactions run at READ COMMITTED: after a writer takes a row lock, every later
// statement reads the latest committed rows. Under REPEATABLE READ, TiDB would keep
// serving plain reads from the snapshot taken at begin.
type TransactionManager struct {
	db         *sql.DB
	maxRetries int
	opts       *sql.TxOptions
}

// NewTransactionManager creates a new TransactionManager. maxRetries below 1 means one attempt.
func NewTransactionManager(db *sql.DB, maxRetries int) *TransactionManager {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &TransactionManager{
		db:         db,
		maxRetries: maxRetries,
		opts:       &sql.TxOptions{Isolation: sql.LevelReadCommitted},
	}
}

// WithTransaction runs fn in a transaction carried by the context passed to fn.
// A nested call joins the outer transaction. Deadlocks are retried.
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ExtractTx(ctx) != nil {
		return fn(ctx)
	}
	return tm.WithRetry(ctx, fn, tm.maxRetries)
}

// run executes one attempt. The transaction is rolled back if fn returns an error or panics.
func (tm *TransactionManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := tm.db.BeginTx(ctx, tm.opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(InjectTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed: %w (rollback error: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// WithRetry executes fn within a transaction with automatic retry on deadlock.
// Deadlocks are retried up to maxRetries times with exponential backoff.
// Other errors are returned immediately without retry.
func (tm *TransactionManager) WithRetry(ctx context.Context, fn func(ctx context.Context) error, maxRetries int) error {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := tm.run(ctx, fn)
		if err == nil {
			return nil
		}
		lastErr = err

		if !isDeadlock(err) {
			return err
		}

		if attempt < maxRetries-1 {
			backoff := time.Millisecond * time.Duration(50*(1<<uint(attempt)))
			logrus.WithError(err).WithField("attempt", attempt+1).Warn("⚠️ transaction deadlock, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	if maxRetries == 1 {
		return lastErr
	}
	return fmt.Errorf("transaction failed after %d retries: %w", maxRetries, lastErr)
}

// isDeadlock checks if an error is a deadlock or lock wait timeout
func isDeadlock(err error) bool {
	if err == nil {
		return false
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == ErrCodeDeadlock || myErr.Number == ErrCodeLockWait
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "deadlock") || strings.Contains(errMsg, "lock wait timeout")
}

// isDuplicateKey reports a unique index violation
func isDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == ErrCodeDuplicateKey
}
