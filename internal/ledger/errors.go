package ledger

import "errors"

var (
	ErrUnknownInstrument = errors.New("unknown instrument")
	ErrUnknownPosition   = errors.New("not enough shares to sell")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInsufficientFunds = errors.New("not enough balance")
	ErrNoSeedPrice       = errors.New("no positive seed price")
	ErrNegativeCash      = errors.New("initial cash must not be negative")
)
