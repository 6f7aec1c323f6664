package exception

import "errors"

var (
	ErrAccountNotFound = errors.New("ledger: account not found")
)
