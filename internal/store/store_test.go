package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"
)

func newTx(id string) *model.Transaction {
	return &model.Transaction{
		ID:           id,
		UserID:       "u-1",
		Symbol:       enum.SymbolSpot,
		Side:         enum.SideBuy,
		Amount:       decimal.NewFromInt(500),
		QuotedPrice:  decimal.NewFromInt(2000),
		Status:       enum.StatusPending,
		ProcessingID: "p-" + id,
	}
}

func TestLifecycleForwardOnly(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newTx("t-1")))

	// the creation path rewrites pending before moving on
	require.NoError(t, s.UpdateStatus(ctx, "t-1", enum.StatusPending, ""))
	require.NoError(t, s.UpdateStatus(ctx, "t-1", enum.StatusProcessing, ""))

	err := s.UpdateStatus(ctx, "t-1", enum.StatusPending, "")
	assert.ErrorIs(t, err, exception.ErrInvalidState, "lifecycle must not move backward")

	require.NoError(t, s.UpdateStatus(ctx, "t-1", enum.StatusFailed, "cancelled by user"))

	err = s.UpdateStatus(ctx, "t-1", enum.StatusCompleted, "")
	assert.ErrorIs(t, err, exception.ErrTransactionTerminal)
}

func TestRecordExecutionOverwritesRacingCancel(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newTx("t-1")))
	require.NoError(t, s.UpdateStatus(ctx, "t-1", enum.StatusProcessing, ""))
	require.NoError(t, s.UpdateStatus(ctx, "t-1", enum.StatusFailed, "cancelled by user"))

	price := decimal.NewFromInt(1800)
	qty := decimal.NewFromFloat(0.27)
	amount := decimal.NewFromInt(486)
	require.NoError(t, s.RecordExecution(ctx, "t-1", price, qty, amount))

	tx, err := s.GetByID(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, enum.StatusCompleted, tx.Status)
	assert.True(t, tx.ExecutedAmount.Equal(amount))
	assert.Empty(t, tx.ErrorMessage)
}

func TestGetByProcessingID(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newTx("t-7")))

	tx, err := s.GetByProcessingID(ctx, "p-t-7")
	require.NoError(t, err)
	assert.Equal(t, "t-7", tx.ID)

	_, err = s.GetByProcessingID(ctx, "nope")
	assert.ErrorIs(t, err, exception.ErrTransactionNotFound)
}

func TestListByUserNewestFirst(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	for _, id := range []string{"t-1", "t-2", "t-3"} {
		require.NoError(t, s.Create(ctx, newTx(id)))
	}

	txs, err := s.ListByUser(ctx, "u-1", 2, 0)
	require.NoError(t, err)
	assert.Len(t, txs, 2)

	rest, err := s.ListByUser(ctx, "u-1", 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}
