package exception

import "errors"

var (
	ErrInsufficientSettlementFunds = errors.New("settle: insufficient funds to cover price increase")
)
