package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerAccount holds a user's cash balance in THB.
type LedgerAccount struct {
	UserID    string          `gorm:"primaryKey;size:36" json:"user_id"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,8)" json:"balance"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (LedgerAccount) TableName() string {
	return "ledger_accounts"
}
