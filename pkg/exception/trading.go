package exception

import "errors"

var (
	ErrInvalidSymbol       = errors.New("trading: symbol must be spot or gold96")
	ErrInvalidSide         = errors.New("trading: side must be buy or sell")
	ErrInvalidAmount       = errors.New("trading: amount must be positive")
	ErrInsufficientFunds   = errors.New("trading: insufficient funds")
	ErrTransactionNotFound = errors.New("trading: transaction not found")
	ErrAccessDenied        = errors.New("trading: access denied")
	ErrInvalidState        = errors.New("trading: transaction is not cancellable")
	ErrTransactionTerminal = errors.New("trading: transaction already terminal")
)
