package trading

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"main/internal/errors"
	"main/internal/model/enum"
	"main/pkg/exception"
)

// portfolioHistoryLimit bounds the completed transactions scanned when
// deriving holdings. No holdings table exists; positions are the net of
// executed quantities.
const portfolioHistoryLimit = 1000

// Holding is a net position in one symbol valued at the current quote.
// Price and Value stay zero when the quote is unavailable.
type Holding struct {
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Value    decimal.Decimal `json:"value"`
}

// Portfolio is the user's cash balance plus marked-to-market holdings.
type Portfolio struct {
	UserID     string                  `json:"user_id"`
	Balance    decimal.Decimal         `json:"balance"`
	Holdings   map[enum.Symbol]Holding `json:"holdings"`
	TotalValue decimal.Decimal         `json:"total_portfolio_value"`
	AsOf       time.Time               `json:"timestamp"`
}

// Portfolio aggregates the user's balance and net holdings. Holdings are
// summed from completed transactions (buys add executed quantity, sells
// subtract) and valued at the current sell-side quote. A user without a
// ledger account reads as zero balance rather than an error.
func (s *Service) Portfolio(ctx context.Context, userID string) (*Portfolio, error) {
	balance, err := s.ledger.Balance(ctx, userID)
	if err != nil {
		if !errors.Is(err, exception.ErrAccountNotFound) {
			return nil, err
		}
		balance = decimal.Zero
	}

	txs, err := s.store.ListByUser(ctx, userID, portfolioHistoryLimit, 0)
	if err != nil {
		return nil, err
	}

	quantities := map[enum.Symbol]decimal.Decimal{
		enum.SymbolSpot:   decimal.Zero,
		enum.SymbolGold96: decimal.Zero,
	}
	for _, tx := range txs {
		if tx.Status != enum.StatusCompleted || !tx.ExecutedQuantity.IsPositive() {
			continue
		}
		switch tx.Side {
		case enum.SideBuy:
			quantities[tx.Symbol] = quantities[tx.Symbol].Add(tx.ExecutedQuantity)
		case enum.SideSell:
			quantities[tx.Symbol] = quantities[tx.Symbol].Sub(tx.ExecutedQuantity)
		}
	}

	total := balance
	holdings := make(map[enum.Symbol]Holding, len(quantities))
	for symbol, quantity := range quantities {
		holding := Holding{
			Quantity: quantity,
			Price:    decimal.Zero,
			Value:    decimal.Zero,
		}
		if quantity.IsPositive() {
			if quote, qerr := s.oracle.GetCurrentPrice(ctx, symbol); qerr == nil {
				holding.Price = quote.PerUnit(enum.SideSell)
				holding.Value = quantity.Mul(holding.Price)
				total = total.Add(holding.Value)
			}
		}
		holdings[symbol] = holding
	}

	return &Portfolio{
		UserID:     userID,
		Balance:    balance,
		Holdings:   holdings,
		TotalValue: total,
		AsOf:       time.Now().UTC(),
	}, nil
}
