package trading

import (
	"context"
	"time"

	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"
)

// PollingResult merges the durable transaction row with the live task
// status from the queue's ephemeral cache.
type PollingResult struct {
	TransactionID string             `json:"transaction_id"`
	Status        enum.Status        `json:"status"`
	Message       string             `json:"message"`
	Data          map[string]any     `json:"data,omitempty"`
	Transaction   *model.Transaction `json:"transaction"`
	CompletedAt   *time.Time         `json:"completed_at,omitempty"`
}

// PollStatus reports the freshest view of a transaction. While the durable
// row still says processing, a live task status overrides it in the
// response (the row itself is never written by a poll). Terminal durable
// states win over anything the queue reports, since the task status
// expires independently.
func (s *Service) PollStatus(ctx context.Context, orderID, userID string) (*PollingResult, error) {
	tx, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, exception.ErrAccessDenied
	}

	status := tx.Status
	errorMessage := tx.ErrorMessage
	var data map[string]any

	if status == enum.StatusProcessing && tx.ProcessingID != "" {
		if live, lerr := s.queue.GetStatus(ctx, tx.ProcessingID); lerr == nil && live != nil && live.Status.IsAvailable() {
			status = live.Status
			if status.IsTerminal() {
				data = live.Result
				if msg, ok := live.Result["error"].(string); ok && errorMessage == "" {
					errorMessage = msg
				}
			}
		}
	}

	result := &PollingResult{
		TransactionID: tx.ID,
		Status:        status,
		Message:       statusMessage(status, errorMessage),
		Data:          data,
		Transaction:   tx,
	}
	if tx.Status.IsTerminal() {
		completedAt := tx.UpdatedAt
		result.CompletedAt = &completedAt
	}
	return result, nil
}

func statusMessage(status enum.Status, errorMessage string) string {
	switch status {
	case enum.StatusPending:
		return "pending"
	case enum.StatusProcessing:
		return "processing"
	case enum.StatusCompleted:
		return "completed"
	case enum.StatusFailed:
		if errorMessage == "" {
			errorMessage = "unknown error"
		}
		return "failed: " + errorMessage
	default:
		return string(status)
	}
}
