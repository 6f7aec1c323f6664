package worker

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"main/internal/errors"
	"main/internal/model/enum"
	"main/internal/queue"
	"main/pkg/exception"
)

// quantityScale matches the DECIMAL(20,8) columns: executed quantity is
// rounded to 8 places, so the executed amount can differ from the
// requested amount by a rounding remainder that the reconciliation
// refunds or charges.
const quantityScale = 8

// Adjustment kinds recorded in the settlement result.
const (
	adjustmentNone   = "none"
	adjustmentRefund = "refund"
	adjustmentCharge = "additional_charge"
	adjustmentCredit = "credit"
)

// Outcome is a successful settlement: the re-priced execution plus the
// ledger adjustment that reconciled it against the quoted amount.
type Outcome struct {
	ExecutedPrice     decimal.Decimal
	ExecutedQuantity  decimal.Decimal
	ExecutedAmount    decimal.Decimal
	QuotedPrice       decimal.Decimal
	BalanceAdjustment decimal.Decimal
	AdjustmentType    string
	ExecutedAt        time.Time
}

// Result shapes the outcome into the task status payload clients poll.
func (o Outcome) Result(transactionID string) map[string]any {
	return map[string]any{
		"transaction_id":     transactionID,
		"reference_id":       "TXN" + transactionID,
		"executed_price":     o.ExecutedPrice.String(),
		"original_price":     o.QuotedPrice.String(),
		"executed_quantity":  o.ExecutedQuantity.String(),
		"executed_amount":    o.ExecutedAmount.String(),
		"price_change":       o.ExecutedPrice.Sub(o.QuotedPrice).String(),
		"balance_adjustment": o.BalanceAdjustment.String(),
		"adjustment_type":    o.AdjustmentType,
		"executed_at":        o.ExecutedAt.Format(time.RFC3339Nano),
		"status":             "executed",
	}
}

// computeExecution derives the executed quantity and amount from the cash
// amount at the current price. Quantity always comes from the amount
// division, for sells as well as buys.
func computeExecution(amount, currentPrice decimal.Decimal) (quantity, executedAmount decimal.Decimal) {
	quantity = amount.DivRound(currentPrice, quantityScale)
	executedAmount = quantity.Mul(currentPrice).Round(quantityScale)
	return quantity, executedAmount
}

// settle re-prices the task at the freshest observable price and
// reconciles the ledger against the amount already held (buy) or not yet
// credited (sell).
func (w *Worker) settle(ctx context.Context, task queue.Task) (Outcome, error) {
	quote, err := w.oracle.GetCurrentPrice(ctx, task.Symbol)
	if err != nil {
		return Outcome{}, err
	}

	currentPrice := quote.PerUnit(task.Side)
	if !currentPrice.IsPositive() {
		return Outcome{}, exception.ErrPriceUnavailable
	}

	quantity, executedAmount := computeExecution(task.Amount, currentPrice)

	outcome := Outcome{
		ExecutedPrice:     currentPrice,
		ExecutedQuantity:  quantity,
		ExecutedAmount:    executedAmount,
		QuotedPrice:       task.QuotedPrice,
		BalanceAdjustment: decimal.Zero,
		AdjustmentType:    adjustmentNone,
		ExecutedAt:        time.Now().UTC(),
	}

	switch task.Side {
	case enum.SideBuy:
		// The full requested amount was held at order time; settle the
		// difference against what the execution actually cost.
		delta := task.Amount.Sub(executedAmount)
		switch {
		case delta.IsPositive():
			ok, err := w.ledger.Adjust(ctx, task.UserID, delta)
			if err != nil {
				return Outcome{}, errors.Wrap(err, "refund settlement difference")
			}
			if !ok {
				return Outcome{}, errors.New("refund rejected")
			}
			outcome.BalanceAdjustment = delta
			outcome.AdjustmentType = adjustmentRefund
		case delta.IsNegative():
			ok, err := w.ledger.Adjust(ctx, task.UserID, delta)
			if err != nil {
				return Outcome{}, errors.Wrap(err, "charge settlement difference")
			}
			if !ok {
				return Outcome{}, exception.ErrInsufficientSettlementFunds
			}
			outcome.BalanceAdjustment = delta
			outcome.AdjustmentType = adjustmentCharge
		}

	case enum.SideSell:
		// No hold existed for sells; the proceeds are credited here.
		ok, err := w.ledger.Adjust(ctx, task.UserID, executedAmount)
		if err != nil {
			return Outcome{}, errors.Wrap(err, "credit sell proceeds")
		}
		if !ok {
			return Outcome{}, errors.New("sell credit rejected")
		}
		outcome.BalanceAdjustment = executedAmount
		outcome.AdjustmentType = adjustmentCredit

	default:
		return Outcome{}, exception.ErrInvalidSide
	}

	return outcome, nil
}
