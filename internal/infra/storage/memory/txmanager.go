package memory

import (
	"context"
	"sync"
)

// TxManager выполняет функцию без настоящей транзакции.
// Первые вызовы DoSerializable возвращают ошибки из Conflicts, не выполняя fn.
type TxManager struct {
	mu            sync.Mutex
	Conflicts     []error
	Calls         int
	ReadOnlyCalls int
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.Calls++
	var injected error
	if len(m.Conflicts) > 0 {
		injected, m.Conflicts = m.Conflicts[0], m.Conflicts[1:]
	}
	m.mu.Unlock()

	if injected != nil {
		return injected
	}
	return fn(ctx)
}

func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.ReadOnlyCalls++
	m.mu.Unlock()
	return fn(ctx)
}
