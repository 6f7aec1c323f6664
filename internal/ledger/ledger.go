package ledger

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"main/internal/errors"
	"main/internal/model"
	"main/pkg/exception"
)

const lockStripes = 64

// PG is the postgres-backed balance ledger.
//
// Adjust is a read-check-write sequence; a striped in-process mutex per
// user serializes concurrent adjustments to the same account so overlapping
// order placement and settlement cannot lose updates. This assumes a single
// process owns balance writes.
type PG struct {
	db    *gorm.DB
	locks [lockStripes]sync.Mutex
}

func NewPG(db *gorm.DB) *PG {
	return &PG{db: db}
}

// Balance returns the user's current balance.
func (l *PG) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var account model.LedgerAccount
	err := l.db.WithContext(ctx).First(&account, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, exception.ErrAccountNotFound
	}
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "load ledger account")
	}
	return account.Balance, nil
}

// Adjust applies a signed delta to the user's balance. It returns false
// without mutating when the result would be negative.
func (l *PG) Adjust(ctx context.Context, userID string, delta decimal.Decimal) (bool, error) {
	mu := l.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	var account model.LedgerAccount
	err := l.db.WithContext(ctx).First(&account, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, exception.ErrAccountNotFound
	}
	if err != nil {
		return false, errors.Wrap(err, "load ledger account")
	}

	next := account.Balance.Add(delta)
	if next.IsNegative() {
		return false, nil
	}

	err = l.db.WithContext(ctx).Model(&model.LedgerAccount{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"balance":    next,
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return false, errors.Wrap(err, "update ledger account")
	}
	return true, nil
}

// CreateAccount provisions an account with an opening balance.
// It is a no-op if the account already exists.
func (l *PG) CreateAccount(ctx context.Context, userID string, opening decimal.Decimal) error {
	if opening.IsNegative() {
		return exception.ErrInvalidAmount
	}

	account := model.LedgerAccount{
		UserID:    userID,
		Balance:   opening,
		UpdatedAt: time.Now().UTC(),
	}
	err := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		FirstOrCreate(&account).Error
	return errors.Wrap(err, "create ledger account")
}

func (l *PG) lockFor(userID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return &l.locks[h.Sum32()%lockStripes]
}
