package trading

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/oracle"
	"main/pkg/exception"
)

// quoteMap serves per-symbol quotes; missing symbols read as unavailable.
type quoteMap map[enum.Symbol]oracle.Quote

func (m quoteMap) GetCurrentPrice(_ context.Context, symbol enum.Symbol) (oracle.Quote, error) {
	quote, ok := m[symbol]
	if !ok {
		return oracle.Quote{}, exception.ErrPriceUnavailable
	}
	return quote, nil
}

func completedTx(id, userID string, symbol enum.Symbol, side enum.Side, quantity string) *model.Transaction {
	return &model.Transaction{
		ID:               id,
		UserID:           userID,
		Symbol:           symbol,
		Side:             side,
		ExecutedQuantity: decimal.RequireFromString(quantity),
		Status:           enum.StatusCompleted,
	}
}

func TestPortfolio(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1000)
	f.service.oracle = quoteMap{
		enum.SymbolSpot: {Symbol: enum.SymbolSpot, Single: decimal.NewFromInt(2000), AsOf: time.Now().UTC()},
		enum.SymbolGold96: {
			Symbol: enum.SymbolGold96,
			Buy:    decimal.NewFromInt(2010),
			Sell:   decimal.NewFromInt(1990),
			AsOf:   time.Now().UTC(),
		},
	}

	require.NoError(t, f.store.Create(ctx, completedTx("t-1", "u-1", enum.SymbolSpot, enum.SideBuy, "0.5")))
	require.NoError(t, f.store.Create(ctx, completedTx("t-2", "u-1", enum.SymbolSpot, enum.SideSell, "0.2")))
	require.NoError(t, f.store.Create(ctx, completedTx("t-3", "u-1", enum.SymbolGold96, enum.SideBuy, "2")))
	// non-completed rows contribute nothing
	pending := completedTx("t-4", "u-1", enum.SymbolSpot, enum.SideBuy, "9")
	pending.Status = enum.StatusProcessing
	require.NoError(t, f.store.Create(ctx, pending))

	portfolio, err := f.service.Portfolio(ctx, "u-1")
	require.NoError(t, err)

	assert.True(t, portfolio.Balance.Equal(decimal.NewFromInt(1000)))

	spot := portfolio.Holdings[enum.SymbolSpot]
	assert.True(t, spot.Quantity.Equal(decimal.NewFromFloat(0.3)), "spot quantity %s", spot.Quantity)
	assert.True(t, spot.Value.Equal(decimal.NewFromInt(600)), "spot value %s", spot.Value)

	gold96 := portfolio.Holdings[enum.SymbolGold96]
	assert.True(t, gold96.Quantity.Equal(decimal.NewFromInt(2)))
	// holdings are marked at the sell-side quote
	assert.True(t, gold96.Price.Equal(decimal.NewFromInt(1990)))
	assert.True(t, gold96.Value.Equal(decimal.NewFromInt(3980)))

	want := decimal.NewFromInt(1000 + 600 + 3980)
	assert.True(t, portfolio.TotalValue.Equal(want), "total %s, want %s", portfolio.TotalValue, want)
}

func TestPortfolioPriceUnavailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1000)
	f.service.oracle = quoteMap{}

	require.NoError(t, f.store.Create(ctx, completedTx("t-1", "u-1", enum.SymbolSpot, enum.SideBuy, "0.5")))

	portfolio, err := f.service.Portfolio(ctx, "u-1")
	require.NoError(t, err)

	spot := portfolio.Holdings[enum.SymbolSpot]
	assert.True(t, spot.Quantity.Equal(decimal.NewFromFloat(0.5)))
	assert.True(t, spot.Value.IsZero(), "unpriced holdings carry no value")
	assert.True(t, portfolio.TotalValue.Equal(decimal.NewFromInt(1000)), "total %s", portfolio.TotalValue)
}

func TestPortfolioNoAccount(t *testing.T) {
	f := newFixture(t, 1000)

	portfolio, err := f.service.Portfolio(context.Background(), "ghost")
	require.NoError(t, err)
	assert.True(t, portfolio.Balance.IsZero())
	assert.True(t, portfolio.TotalValue.IsZero())
}
