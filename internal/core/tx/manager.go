// Package tx defines the transaction contracts domain services depend on.
// The PostgreSQL implementation lives in infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs fn inside a database transaction. An error from fn rolls back;
// nested calls reuse the transaction already stored in ctx.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager adds read-only transactions for consistent multi-query reads.
type ReadOnlyManager interface {
	Manager
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker takes transaction-scoped locks on arbitrary keys. Locks are released
// at commit or rollback, so LockKeys must be called inside RunInTransaction.
// Keys are locked in sorted order to avoid deadlocks between writers.
type Locker interface {
	LockKeys(ctx context.Context, keys ...string) error
}

// LockingManager is a Manager that can also take advisory locks.
type LockingManager interface {
	Manager
	Locker
}
