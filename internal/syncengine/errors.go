package syncengine

import (
	"errors"
	"fmt"
)

// ErrBudgetNotFound means the live budget document disappeared. Fatal: the
// session cannot continue against a missing document.
var ErrBudgetNotFound = errors.New("budget not found")

// ErrOnlyBudget guards against deleting the user's last remaining budget.
var ErrOnlyBudget = errors.New("cannot delete the only budget")

// ErrDisposed is returned by operations on a torn-down engine.
var ErrDisposed = errors.New("session disposed")

// MigrationError wraps any failure of the one-time legacy migration.
// Always fatal for startup; never swallowed.
type MigrationError struct {
	Err error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("legacy budget migration failed: %v", e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

// ConnectionError wraps a document store transport failure. Subscription
// failures are fatal; write failures are recoverable by retrying the
// mutation.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("document store %s failed: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
