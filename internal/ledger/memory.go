package ledger

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"main/pkg/exception"
)

// Memory is an in-process ledger used by tests and paper trading.
type Memory struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
}

func NewMemory() *Memory {
	return &Memory{balances: make(map[string]decimal.Decimal)}
}

func (l *Memory) Balance(_ context.Context, userID string) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[userID]
	if !ok {
		return decimal.Zero, exception.ErrAccountNotFound
	}
	return balance, nil
}

func (l *Memory) Adjust(_ context.Context, userID string, delta decimal.Decimal) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[userID]
	if !ok {
		return false, exception.ErrAccountNotFound
	}

	next := balance.Add(delta)
	if next.IsNegative() {
		return false, nil
	}

	l.balances[userID] = next
	return true, nil
}

func (l *Memory) CreateAccount(_ context.Context, userID string, opening decimal.Decimal) error {
	if opening.IsNegative() {
		return exception.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.balances[userID]; !ok {
		l.balances[userID] = opening
	}
	return nil
}
