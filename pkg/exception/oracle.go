package exception

import "errors"

var (
	ErrPriceUnavailable = errors.New("oracle: no current price data")
)
