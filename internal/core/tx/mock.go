package tx

import (
	"context"
	"sync"
)

// MockManager runs fn directly and records lock keys. Services under test
// use it in place of a database transaction.
type MockManager struct {
	mu     sync.Mutex
	Locked []string
	// Calls counts RunInTransaction invocations.
	Calls int
}

func (m *MockManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	return fn(ctx)
}

func (m *MockManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// LockKeys records keys in call order.
func (m *MockManager) LockKeys(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Locked = append(m.Locked, keys...)
	return nil
}

var (
	_ ReadOnlyManager = (*MockManager)(nil)
	_ Locker          = (*MockManager)(nil)
)
