package oracle

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"main/internal/model/enum"
)

// Quote is the latest known price snapshot for a symbol.
//
// Spot carries a single price used for both sides; gold96 carries the
// dealer's buy (ask) and sell (bid) quotes.
type Quote struct {
	Symbol enum.Symbol
	Single decimal.Decimal
	Buy    decimal.Decimal
	Sell   decimal.Decimal
	AsOf   time.Time
}

// PerUnit resolves the per-unit price for the given order side.
func (q Quote) PerUnit(side enum.Side) decimal.Decimal {
	if q.Symbol == enum.SymbolGold96 {
		if side == enum.SideBuy {
			return q.Buy
		}
		return q.Sell
	}
	return q.Single
}

// Oracle supplies the freshest observable price for a symbol.
// Staleness of AsOf is not checked by callers.
type Oracle interface {
	GetCurrentPrice(ctx context.Context, symbol enum.Symbol) (Quote, error)
}
