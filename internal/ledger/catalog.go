package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"PaperTrader/internal/model"
)

// PriceDigits is the number of fractional digits every price is rounded to.
const PriceDigits = 2

// MinPrice is the smallest representable price. Refreshes never go below it.
var MinPrice = decimal.New(1, -PriceDigits)

// InstrumentSpec is a startup catalog entry. Price is the built-in default
// and may be zero when a recovered snapshot is expected to supply it.
type InstrumentSpec struct {
	Ticker string
	Name   string
	Price  decimal.Decimal
}

// Instrument is a tradeable catalog entry with a strictly positive price.
type Instrument struct {
	ticker string
	name   string
	price  decimal.Decimal
}

func (i *Instrument) Ticker() string         { return i.ticker }
func (i *Instrument) Name() string           { return i.name }
func (i *Instrument) Price() decimal.Decimal { return i.price }

func (i *Instrument) quote() model.Quote {
	return model.Quote{Ticker: i.ticker, Name: i.name, Price: i.price}
}

// Catalog is the fixed, ordered set of instruments of a session.
type Catalog struct {
	order []*Instrument
	index map[string]*Instrument
}

// NewCatalog builds a catalog from built-in defaults only.
func NewCatalog(specs []InstrumentSpec) (*Catalog, error) {
	return SeedCatalog(specs, nil)
}

// SeedCatalog builds a catalog whose prices come from the recovered snapshot
// when it holds a positive price for the instrument name, and from the
// built-in default otherwise. An instrument with neither fails construction.
func SeedCatalog(specs []InstrumentSpec, recovered map[string]decimal.Decimal) (*Catalog, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("catalog: no instruments")
	}
	c := &Catalog{
		order: make([]*Instrument, 0, len(specs)),
		index: make(map[string]*Instrument, len(specs)),
	}
	names := make(map[string]bool, len(specs))
	for _, s := range specs {
		if s.Ticker == "" || s.Name == "" {
			return nil, fmt.Errorf("catalog: instrument %q/%q: ticker and name are required", s.Ticker, s.Name)
		}
		if _, dup := c.index[s.Ticker]; dup {
			return nil, fmt.Errorf("catalog: duplicate ticker %q", s.Ticker)
		}
		if names[s.Name] {
			return nil, fmt.Errorf("catalog: duplicate name %q", s.Name)
		}
		if s.Price.IsNegative() {
			return nil, fmt.Errorf("catalog: %s: negative default price %s", s.Name, s.Price)
		}

		price := s.Price
		if p, ok := recovered[s.Name]; ok && p.IsPositive() {
			price = p
		}
		price = price.Round(PriceDigits)
		if !price.IsPositive() {
			return nil, fmt.Errorf("catalog: %s: %w", s.Name, ErrNoSeedPrice)
		}

		inst := &Instrument{ticker: s.Ticker, name: s.Name, price: price}
		c.order = append(c.order, inst)
		c.index[s.Ticker] = inst
		names[s.Name] = true
	}
	return c, nil
}

// Lookup returns the instrument with this ticker.
func (c *Catalog) Lookup(ticker string) (*Instrument, bool) {
	inst, ok := c.index[ticker]
	return inst, ok
}

// Len returns the number of instruments.
func (c *Catalog) Len() int { return len(c.order) }

// Quotes returns the current prices in catalog order.
func (c *Catalog) Quotes() []model.Quote {
	out := make([]model.Quote, len(c.order))
	for i, inst := range c.order {
		out[i] = inst.quote()
	}
	return out
}
