package queue

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"main/internal/errors"
	"main/internal/model/enum"
	"main/pkg/exception"
)

// TaskVersion is the current envelope version. Dequeue rejects anything else.
const TaskVersion = 1

// Task is the versioned envelope carried through the work queue.
// Quantity is provisional; the worker recomputes it at settlement.
type Task struct {
	Version       int             `json:"version"`
	ProcessingID  string          `json:"processing_id"`
	TransactionID string          `json:"transaction_id"`
	UserID        string          `json:"user_id"`
	Symbol        enum.Symbol     `json:"symbol"`
	Side          enum.Side       `json:"side"`
	Quantity      decimal.Decimal `json:"quantity"`
	QuotedPrice   decimal.Decimal `json:"quoted_price"`
	Amount        decimal.Decimal `json:"amount"`
	Priority      int             `json:"priority"`
	QueuedAt      time.Time       `json:"queued_at"`
}

// Validate rejects stale or malformed envelopes before processing starts.
func (t Task) Validate() error {
	if t.Version != TaskVersion {
		return exception.ErrTaskVersion
	}
	if t.ProcessingID == "" {
		return exception.ErrTaskMissingID
	}
	if !t.Symbol.IsAvailable() {
		return exception.ErrInvalidSymbol
	}
	if !t.Side.IsAvailable() {
		return exception.ErrInvalidSide
	}
	return nil
}

func encodeTask(t Task) ([]byte, error) {
	return json.Marshal(t)
}

func decodeTask(data []byte) (Task, error) {
	var t Task
	if err := json.Unmarshal(data, &t); err != nil {
		return Task{}, errors.Wrap(exception.ErrTaskMalformed, err.Error())
	}
	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	return t, nil
}
