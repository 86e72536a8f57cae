package model

import "github.com/shopspring/decimal"

// Position is one held instrument valued at its current price.
type Position struct {
	Ticker   string
	Name     string
	Quantity int64
	Price    decimal.Decimal
	Value    decimal.Decimal
}

// Valuation is a point-in-time read of the ledger.
type Valuation struct {
	Cash          decimal.Decimal
	HoldingsValue decimal.Decimal
	TotalWorth    decimal.Decimal
	Positions     []Position // catalog order
}
