package oracle

import (
	"context"

	"gorm.io/gorm"

	"main/internal/errors"
	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"
)

var _ Oracle = (*PG)(nil)

// PG reads the newest feed snapshot from the price tables.
type PG struct {
	db *gorm.DB
}

func NewPG(db *gorm.DB) *PG {
	return &PG{db: db}
}

func (o *PG) GetCurrentPrice(ctx context.Context, symbol enum.Symbol) (Quote, error) {
	switch symbol {
	case enum.SymbolSpot:
		var row model.SpotPrice
		err := o.db.WithContext(ctx).Order("timestamp DESC").First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Quote{}, exception.ErrPriceUnavailable
		}
		if err != nil {
			return Quote{}, errors.Wrap(err, "load spot price")
		}
		return Quote{
			Symbol: enum.SymbolSpot,
			Single: row.Price,
			AsOf:   row.Timestamp,
		}, nil

	case enum.SymbolGold96:
		var row model.Gold96Price
		err := o.db.WithContext(ctx).Order("timestamp DESC").First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Quote{}, exception.ErrPriceUnavailable
		}
		if err != nil {
			return Quote{}, errors.Wrap(err, "load gold96 price")
		}
		return Quote{
			Symbol: enum.SymbolGold96,
			Buy:    row.BuyPrice,
			Sell:   row.SellPrice,
			AsOf:   row.Timestamp,
		}, nil

	default:
		return Quote{}, exception.ErrInvalidSymbol
	}
}
