package model

import (
	"time"

	"github.com/shopspring/decimal"

	"main/internal/model/enum"
)

// Transaction is the durable record of a deferred buy/sell order.
//
// Amount is the cash the user committed (buy: to spend, sell: to receive).
// QuotedPrice is the per-unit price observed at order time; the Executed*
// fields are filled in by the worker at settlement with the re-priced values.
type Transaction struct {
	ID               string          `gorm:"primaryKey;size:36" json:"id"`
	UserID           string          `gorm:"size:36;index" json:"user_id"`
	Symbol           enum.Symbol     `gorm:"size:20" json:"symbol"`
	Side             enum.Side       `gorm:"size:10" json:"side"`
	Amount           decimal.Decimal `gorm:"type:decimal(20,8)" json:"amount"`
	QuotedPrice      decimal.Decimal `gorm:"type:decimal(20,8)" json:"quoted_price"`
	ExecutedQuantity decimal.Decimal `gorm:"type:decimal(20,8)" json:"executed_quantity"`
	ExecutedPrice    decimal.Decimal `gorm:"type:decimal(20,8)" json:"executed_price"`
	ExecutedAmount   decimal.Decimal `gorm:"type:decimal(20,8)" json:"executed_amount"`
	Status           enum.Status     `gorm:"size:20;index" json:"status"`
	ProcessingID     string          `gorm:"size:36;index" json:"processing_id"`
	PollURL          string          `gorm:"size:255" json:"poll_url"`
	ErrorMessage     string          `json:"error_message,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
