package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"main/internal/errors"
	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"
)

// PG is the durable transaction store on postgres.
type PG struct {
	db *gorm.DB
}

func NewPG(db *gorm.DB) *PG {
	return &PG{db: db}
}

func (s *PG) Create(ctx context.Context, tx *model.Transaction) error {
	return errors.Wrap(s.db.WithContext(ctx).Create(tx).Error, "create transaction")
}

func (s *PG) GetByID(ctx context.Context, id string) (*model.Transaction, error) {
	var tx model.Transaction
	err := s.db.WithContext(ctx).First(&tx, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, exception.ErrTransactionNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load transaction")
	}
	return &tx, nil
}

func (s *PG) GetByProcessingID(ctx context.Context, processingID string) (*model.Transaction, error) {
	var tx model.Transaction
	err := s.db.WithContext(ctx).First(&tx, "processing_id = ?", processingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, exception.ErrTransactionNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load transaction by processing id")
	}
	return &tx, nil
}

func (s *PG) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Transaction, error) {
	var txs []model.Transaction
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	return txs, errors.Wrap(err, "list user transactions")
}

func (s *PG) ListPending(ctx context.Context, limit int) ([]model.Transaction, error) {
	var txs []model.Transaction
	err := s.db.WithContext(ctx).
		Where("status = ?", enum.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&txs).Error
	return txs, errors.Wrap(err, "list pending transactions")
}

// UpdateStatus moves a transaction forward through its lifecycle.
// Writes to a terminal row are rejected with ErrTransactionTerminal.
func (s *PG) UpdateStatus(ctx context.Context, id string, status enum.Status, errorMessage string) error {
	tx, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if tx.Status.IsTerminal() {
		return exception.ErrTransactionTerminal
	}
	if tx.Status != status && !tx.Status.CanTransition(status) {
		return exception.ErrInvalidState
	}

	err = s.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        status,
			"error_message": errorMessage,
			"updated_at":    time.Now().UTC(),
		}).Error
	return errors.Wrap(err, "update transaction status")
}

// RecordExecution writes the settlement outcome. This is the worker's
// completion path; it intentionally overwrites a racing cancellation
// (last write wins on settlement).
func (s *PG) RecordExecution(ctx context.Context, id string, price, quantity, amount decimal.Decimal) error {
	err := s.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":            enum.StatusCompleted,
			"executed_price":    price,
			"executed_quantity": quantity,
			"executed_amount":   amount,
			"error_message":     "",
			"updated_at":        time.Now().UTC(),
		}).Error
	return errors.Wrap(err, "record execution")
}

// SetPollURL attaches the polling URL once the transaction ID is known.
func (s *PG) SetPollURL(ctx context.Context, id, pollURL string) error {
	err := s.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ?", id).
		Update("poll_url", pollURL).Error
	return errors.Wrap(err, "set poll url")
}
