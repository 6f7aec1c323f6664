package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"
)

// Memory is an in-process transaction store used by tests and paper trading.
// It enforces the same lifecycle guards as the postgres store.
type Memory struct {
	mu  sync.Mutex
	txs map[string]model.Transaction
}

func NewMemory() *Memory {
	return &Memory{txs: make(map[string]model.Transaction)}
}

func (s *Memory) Create(_ context.Context, tx *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	tx.UpdatedAt = now
	s.txs[tx.ID] = *tx
	return nil
}

func (s *Memory) GetByID(_ context.Context, id string) (*model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.txs[id]
	if !ok {
		return nil, exception.ErrTransactionNotFound
	}
	return &tx, nil
}

func (s *Memory) GetByProcessingID(_ context.Context, processingID string) (*model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range s.txs {
		if tx.ProcessingID == processingID {
			found := tx
			return &found, nil
		}
	}
	return nil, exception.ErrTransactionNotFound
}

func (s *Memory) ListByUser(_ context.Context, userID string, limit, offset int) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var txs []model.Transaction
	for _, tx := range s.txs {
		if tx.UserID == userID {
			txs = append(txs, tx)
		}
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].CreatedAt.After(txs[j].CreatedAt) })

	if offset >= len(txs) {
		return nil, nil
	}
	txs = txs[offset:]
	if limit > 0 && limit < len(txs) {
		txs = txs[:limit]
	}
	return txs, nil
}

func (s *Memory) ListPending(_ context.Context, limit int) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var txs []model.Transaction
	for _, tx := range s.txs {
		if tx.Status == enum.StatusPending {
			txs = append(txs, tx)
		}
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].CreatedAt.Before(txs[j].CreatedAt) })
	if limit > 0 && limit < len(txs) {
		txs = txs[:limit]
	}
	return txs, nil
}

func (s *Memory) UpdateStatus(_ context.Context, id string, status enum.Status, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.txs[id]
	if !ok {
		return exception.ErrTransactionNotFound
	}
	if tx.Status.IsTerminal() {
		return exception.ErrTransactionTerminal
	}
	if tx.Status != status && !tx.Status.CanTransition(status) {
		return exception.ErrInvalidState
	}

	tx.Status = status
	tx.ErrorMessage = errorMessage
	tx.UpdatedAt = time.Now().UTC()
	s.txs[id] = tx
	return nil
}

func (s *Memory) RecordExecution(_ context.Context, id string, price, quantity, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.txs[id]
	if !ok {
		return exception.ErrTransactionNotFound
	}

	tx.Status = enum.StatusCompleted
	tx.ExecutedPrice = price
	tx.ExecutedQuantity = quantity
	tx.ExecutedAmount = amount
	tx.ErrorMessage = ""
	tx.UpdatedAt = time.Now().UTC()
	s.txs[id] = tx
	return nil
}

func (s *Memory) SetPollURL(_ context.Context, id, pollURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.txs[id]
	if !ok {
		return exception.ErrTransactionNotFound
	}
	tx.PollURL = pollURL
	s.txs[id] = tx
	return nil
}
