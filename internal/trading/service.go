package trading

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"

	"main/internal/errors"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/oracle"
	"main/internal/queue"
	"main/pkg/exception"
)

const pollURLPrefix = "/trading/poll/"

// Store is the durable transaction store the service writes through.
type Store interface {
	Create(ctx context.Context, tx *model.Transaction) error
	GetByID(ctx context.Context, id string) (*model.Transaction, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Transaction, error)
	UpdateStatus(ctx context.Context, id string, status enum.Status, errorMessage string) error
	SetPollURL(ctx context.Context, id, pollURL string) error
}

// Ledger holds user cash balances.
type Ledger interface {
	Balance(ctx context.Context, userID string) (decimal.Decimal, error)
	Adjust(ctx context.Context, userID string, delta decimal.Decimal) (bool, error)
}

// Queue is the work queue the service feeds and polls.
type Queue interface {
	Enqueue(ctx context.Context, task queue.Task) (string, error)
	GetStatus(ctx context.Context, processingID string) (*queue.Status, error)
	Health(ctx context.Context) queue.Health
}

// Service is the only writer of new transactions. It owns the up-front
// funds hold for buys and the compensating refund when enqueue fails.
type Service struct {
	store  Store
	ledger Ledger
	queue  Queue
	oracle oracle.Oracle
}

func NewService(store Store, ledger Ledger, q Queue, o oracle.Oracle) *Service {
	return &Service{
		store:  store,
		ledger: ledger,
		queue:  q,
		oracle: o,
	}
}

// PlaceOrder quotes, validates, holds funds for buys, and enqueues the
// execution task. The returned transaction is in processing state with a
// poll URL attached; settlement happens asynchronously.
func (s *Service) PlaceOrder(ctx context.Context, userID string, symbol enum.Symbol, side enum.Side, amount decimal.Decimal) (*model.Transaction, error) {
	quote, err := s.oracle.GetCurrentPrice(ctx, symbol)
	if err != nil {
		if errors.Is(err, exception.ErrPriceUnavailable) || errors.Is(err, exception.ErrInvalidSymbol) {
			return nil, err
		}
		return nil, errors.Wrap(exception.ErrPriceUnavailable, err.Error())
	}
	quotedPrice := quote.PerUnit(side)

	if err := s.validate(ctx, userID, symbol, side, amount); err != nil {
		return nil, err
	}

	tx := &model.Transaction{
		ID:               uuid.NewString(),
		UserID:           userID,
		Symbol:           symbol,
		Side:             side,
		Amount:           amount,
		QuotedPrice:      quotedPrice,
		ExecutedQuantity: decimal.Zero,
		Status:           enum.StatusPending,
		ProcessingID:     uuid.NewString(),
	}
	if err := s.store.Create(ctx, tx); err != nil {
		return nil, err
	}

	// Two sequential writes on purpose: pollers may observe the
	// intermediate pending state before the task is picked up.
	if err := s.store.UpdateStatus(ctx, tx.ID, enum.StatusPending, ""); err != nil {
		return nil, err
	}
	if err := s.store.UpdateStatus(ctx, tx.ID, enum.StatusProcessing, ""); err != nil {
		return nil, err
	}

	quantity := decimal.Zero
	if quotedPrice.IsPositive() {
		quantity = amount.DivRound(quotedPrice, 8)
	}

	if side == enum.SideBuy {
		held, err := s.ledger.Adjust(ctx, userID, amount.Neg())
		if err != nil || !held {
			reason := "failed to hold funds"
			if err != nil {
				reason = errors.Wrap(err, reason).Error()
			}
			if uerr := s.store.UpdateStatus(ctx, tx.ID, enum.StatusFailed, reason); uerr != nil {
				logs.Errorf("mark transaction %s failed, err: %+v", tx.ID, uerr)
			}
			return nil, exception.ErrInsufficientFunds
		}
	}

	task := queue.Task{
		ProcessingID:  tx.ProcessingID,
		TransactionID: tx.ID,
		UserID:        userID,
		Symbol:        symbol,
		Side:          side,
		Quantity:      quantity,
		QuotedPrice:   quotedPrice,
		Amount:        amount,
	}
	if _, err := s.queue.Enqueue(ctx, task); err != nil {
		reason := errors.Wrap(err, "failed to enqueue task").Error()
		if side == enum.SideBuy {
			if refunded, rerr := s.ledger.Adjust(ctx, userID, amount); rerr != nil || !refunded {
				// Degraded but visible: the hold stays debited and the
				// failure write below carries the refund outcome, so it
				// must happen before the row turns terminal.
				logs.Errorf("refund hold for transaction %s, err: %+v", tx.ID, rerr)
				reason += "; refund failed"
			}
		}
		if uerr := s.store.UpdateStatus(ctx, tx.ID, enum.StatusFailed, reason); uerr != nil {
			logs.Errorf("mark transaction %s failed, err: %+v", tx.ID, uerr)
		}
		return nil, errors.Wrap(exception.ErrQueueUnavailable, err.Error())
	}

	pollURL := PollURL(tx.ID)
	if err := s.store.SetPollURL(ctx, tx.ID, pollURL); err != nil {
		logs.Warnf("set poll url for transaction %s, err: %+v", tx.ID, err)
	}

	return s.store.GetByID(ctx, tx.ID)
}

// Cancel marks a not-yet-settled transaction failed. It does not reverse
// a buy-side hold; the worker's completion write can still overwrite a
// cancellation that raced with in-flight execution.
func (s *Service) Cancel(ctx context.Context, orderID, userID string) error {
	tx, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if tx.UserID != userID {
		return exception.ErrAccessDenied
	}
	if tx.Status != enum.StatusPending && tx.Status != enum.StatusProcessing {
		return exception.ErrInvalidState
	}

	return s.store.UpdateStatus(ctx, orderID, enum.StatusFailed, "cancelled by user")
}

// Get returns a single transaction after verifying ownership.
func (s *Service) Get(ctx context.Context, orderID, userID string) (*model.Transaction, error) {
	tx, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, exception.ErrAccessDenied
	}
	return tx, nil
}

// History lists the user's transactions, newest first.
func (s *Service) History(ctx context.Context, userID string, limit, offset int) ([]model.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListByUser(ctx, userID, limit, offset)
}

// BalanceOf returns the user's current cash balance.
func (s *Service) BalanceOf(ctx context.Context, userID string) (decimal.Decimal, error) {
	return s.ledger.Balance(ctx, userID)
}

// Deposit credits the user's balance.
func (s *Service) Deposit(ctx context.Context, userID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return exception.ErrInvalidAmount
	}
	ok, err := s.ledger.Adjust(ctx, userID, amount)
	if err != nil {
		return err
	}
	if !ok {
		return exception.ErrInvalidAmount
	}
	return nil
}

// QueueHealth snapshots the queue backend for operational monitoring.
func (s *Service) QueueHealth(ctx context.Context) queue.Health {
	return s.queue.Health(ctx)
}

// PollURL builds the polling path for a transaction.
func PollURL(transactionID string) string {
	return pollURLPrefix + transactionID
}

func (s *Service) validate(ctx context.Context, userID string, symbol enum.Symbol, side enum.Side, amount decimal.Decimal) error {
	if !symbol.IsAvailable() {
		return exception.ErrInvalidSymbol
	}
	if !side.IsAvailable() {
		return exception.ErrInvalidSide
	}
	if !amount.IsPositive() {
		return exception.ErrInvalidAmount
	}

	if side == enum.SideBuy {
		balance, err := s.ledger.Balance(ctx, userID)
		if err != nil {
			return err
		}
		if balance.LessThan(amount) {
			return exception.ErrInsufficientFunds
		}
	}

	// Sells are cash-settled synthetics: the cash amount to receive is the
	// order, and no holdings check exists.
	return nil
}
