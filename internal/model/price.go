package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SpotPrice is a gold spot snapshot written by the price feed.
// Spot trades both sides at the single Price.
type SpotPrice struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Symbol    string          `gorm:"size:20;index;default:spot" json:"symbol"`
	Price     decimal.Decimal `gorm:"type:decimal(20,8)" json:"price"`
	USDPrice  decimal.Decimal `gorm:"type:decimal(20,8)" json:"usd_price"`
	Timestamp time.Time       `gorm:"index" json:"timestamp"`
	Source    string          `gorm:"size:100" json:"source,omitempty"`
}

func (SpotPrice) TableName() string {
	return "gold_prices"
}

// Gold96Price is a gold 96.5% snapshot with distinct bid/ask quotes.
// BuyPrice is what a buyer pays, SellPrice is what a seller receives.
type Gold96Price struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Symbol    string          `gorm:"size:20;index;default:gold96" json:"symbol"`
	BuyPrice  decimal.Decimal `gorm:"type:decimal(20,8)" json:"buy_price"`
	SellPrice decimal.Decimal `gorm:"type:decimal(20,8)" json:"sell_price"`
	Timestamp time.Time       `gorm:"index" json:"timestamp"`
	Source    string          `gorm:"size:100" json:"source,omitempty"`
}

func (Gold96Price) TableName() string {
	return "gold96_prices"
}
