package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/pkg/exception"
)

func TestMemoryAdjustRejectsNegativeResult(t *testing.T) {
	l := NewMemory()
	ctx := context.Background()

	require.NoError(t, l.CreateAccount(ctx, "u-1", decimal.NewFromInt(100)))

	ok, err := l.Adjust(ctx, "u-1", decimal.NewFromInt(-150))
	require.NoError(t, err)
	assert.False(t, ok, "withdrawal past zero must be rejected")

	balance, err := l.Balance(ctx, "u-1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(100)), "rejected adjustment must not mutate")
}

func TestMemoryAdjustUnknownAccount(t *testing.T) {
	l := NewMemory()

	_, err := l.Adjust(context.Background(), "ghost", decimal.NewFromInt(10))
	assert.ErrorIs(t, err, exception.ErrAccountNotFound)
}

func TestMemoryConcurrentAdjustments(t *testing.T) {
	l := NewMemory()
	ctx := context.Background()

	require.NoError(t, l.CreateAccount(ctx, "u-1", decimal.Zero))

	const n = 200
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, _ = l.Adjust(ctx, "u-1", decimal.NewFromInt(1))
		}()
	}
	wg.Wait()

	balance, err := l.Balance(ctx, "u-1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(n)), "no increment may be lost, got %s", balance)
}

func TestPGLockStriping(t *testing.T) {
	l := NewPG(nil)

	same := l.lockFor("user-a") == l.lockFor("user-a")
	assert.True(t, same, "same user must map to the same stripe")
}
