package queue

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/model/enum"
	"main/pkg/exception"
)

func validTask() Task {
	return Task{
		Version:       TaskVersion,
		ProcessingID:  "p-1",
		TransactionID: "t-1",
		UserID:        "u-1",
		Symbol:        enum.SymbolSpot,
		Side:          enum.SideBuy,
		Quantity:      decimal.NewFromFloat(0.25),
		QuotedPrice:   decimal.NewFromInt(2000),
		Amount:        decimal.NewFromInt(500),
		QueuedAt:      time.Now().UTC(),
	}
}

func TestTaskCodecRoundTrip(t *testing.T) {
	task := validTask()

	raw, err := encodeTask(task)
	require.NoError(t, err)

	decoded, err := decodeTask(raw)
	require.NoError(t, err)

	assert.Equal(t, task.ProcessingID, decoded.ProcessingID)
	assert.Equal(t, task.TransactionID, decoded.TransactionID)
	assert.True(t, task.Amount.Equal(decoded.Amount), "amount should round-trip exactly")
	assert.True(t, task.QuotedPrice.Equal(decoded.QuotedPrice), "quoted price should round-trip exactly")
}

func TestTaskValidate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(*Task)
		want   error
	}{
		{"wrong version", func(task *Task) { task.Version = 99 }, exception.ErrTaskVersion},
		{"missing processing id", func(task *Task) { task.ProcessingID = "" }, exception.ErrTaskMissingID},
		{"bad symbol", func(task *Task) { task.Symbol = "btc" }, exception.ErrInvalidSymbol},
		{"bad side", func(task *Task) { task.Side = "hold" }, exception.ErrInvalidSide},
	} {
		t.Run(tc.name, func(t *testing.T) {
			task := validTask()
			tc.mutate(&task)
			assert.ErrorIs(t, task.Validate(), tc.want)
		})
	}
}

func TestDecodeTaskRejectsGarbage(t *testing.T) {
	_, err := decodeTask([]byte("{not json"))
	assert.ErrorIs(t, err, exception.ErrTaskMalformed)
}

func TestDecodeTaskRejectsStaleVersion(t *testing.T) {
	task := validTask()
	task.Version = 0

	raw, err := encodeTask(task)
	require.NoError(t, err)

	_, err = decodeTask(raw)
	assert.ErrorIs(t, err, exception.ErrTaskVersion)
}
