package model

import "github.com/shopspring/decimal"

// Quote is a single instrument price as shown to the user.
type Quote struct {
	Ticker string
	Name   string
	Price  decimal.Decimal
}

// Cell is one column of a snapshot row. Price.Valid is false for the
// unknown marker written when a schema column had no value.
type Cell struct {
	Name  string
	Price decimal.NullDecimal
}

// Row is one captured price vector, in column order.
type Row []Cell

// RowFromQuotes builds a fully known row from quotes, keyed by display name.
func RowFromQuotes(quotes []Quote) Row {
	row := make(Row, len(quotes))
	for i, q := range quotes {
		row[i] = Cell{Name: q.Name, Price: decimal.NewNullDecimal(q.Price)}
	}
	return row
}

// Names returns the column names of the row in order.
func (r Row) Names() []string {
	names := make([]string, len(r))
	for i, c := range r {
		names[i] = c.Name
	}
	return names
}

// Known returns the known prices of the row keyed by column name.
func (r Row) Known() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(r))
	for _, c := range r {
		if c.Price.Valid {
			out[c.Name] = c.Price.Decimal
		}
	}
	return out
}
