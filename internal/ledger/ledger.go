package ledger

import (
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/shopspring/decimal"

	"PaperTrader/internal/model"
)

// Recorder receives the full price row after every refresh.
type Recorder interface {
	Append(row model.Row) error
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPerturber overrides the refresh factor source.
func WithPerturber(p Perturber) Option {
	return func(l *Ledger) { l.perturber = p }
}

// WithRecorder sets where refreshed prices are appended.
func WithRecorder(r Recorder) Option {
	return func(l *Ledger) { l.recorder = r }
}

// Ledger holds the cash balance and positions of a single trading session.
type Ledger struct {
	mu        sync.Mutex
	cash      decimal.Decimal
	holdings  map[string]int64
	catalog   *Catalog
	perturber Perturber
	recorder  Recorder
}

// NewLedger creates a Ledger over catalog with the given starting cash.
func NewLedger(catalog *Catalog, cash decimal.Decimal, opts ...Option) (*Ledger, error) {
	if catalog == nil {
		return nil, fmt.Errorf("ledger: nil catalog")
	}
	if cash.IsNegative() {
		return nil, ErrNegativeCash
	}
	l := &Ledger{
		cash:     cash.Round(PriceDigits),
		holdings: make(map[string]int64),
		catalog:  catalog,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.perturber == nil {
		l.perturber = NewUniformPerturber(DefaultVolatility, 0)
	}
	return l, nil
}

// Buy spends quantity × price of cash on ticker.
func (l *Ledger) Buy(ticker string, quantity int64) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	inst, ok := l.catalog.Lookup(ticker)
	if !ok {
		return decimal.Zero, fmt.Errorf("buy %q: %w", ticker, ErrUnknownInstrument)
	}
	if quantity <= 0 {
		return decimal.Zero, fmt.Errorf("buy %d: %w", quantity, ErrInvalidQuantity)
	}
	if held := l.holdings[ticker]; held > math.MaxInt64-quantity {
		return decimal.Zero, fmt.Errorf("buy %d on top of %d held: position too large: %w", quantity, held, ErrInvalidQuantity)
	}
	cost := inst.price.Mul(decimal.NewFromInt(quantity))
	if cost.GreaterThan(l.cash) {
		return decimal.Zero, fmt.Errorf("buy %d %s for %s with %s: %w", quantity, inst.name, cost, l.cash, ErrInsufficientFunds)
	}

	l.cash = l.cash.Sub(cost)
	l.holdings[ticker] += quantity
	return cost, nil
}

// Sell releases quantity shares of ticker at the current price.
func (l *Ledger) Sell(ticker string, quantity int64) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	held, ok := l.holdings[ticker]
	if !ok || held < quantity {
		return decimal.Zero, fmt.Errorf("sell %d of %q holding %d: %w", quantity, ticker, held, ErrUnknownPosition)
	}
	if quantity <= 0 {
		return decimal.Zero, fmt.Errorf("sell %d: %w", quantity, ErrInvalidQuantity)
	}
	inst, ok := l.catalog.Lookup(ticker)
	if !ok {
		// holdings keys always come from the catalog
		return decimal.Zero, fmt.Errorf("sell %q: %w", ticker, ErrUnknownInstrument)
	}

	proceeds := inst.price.Mul(decimal.NewFromInt(quantity))
	l.cash = l.cash.Add(proceeds)
	if held == quantity {
		delete(l.holdings, ticker)
	} else {
		l.holdings[ticker] = held - quantity
	}
	return proceeds, nil
}

// RefreshPrices moves every price by an independent random factor and
// records the new row. If recording fails no price is changed.
func (l *Ledger) RefreshPrices() ([]model.Quote, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]decimal.Decimal, len(l.catalog.order))
	quotes := make([]model.Quote, len(l.catalog.order))
	for i, inst := range l.catalog.order {
		p := inst.price.Mul(l.perturber.Factor()).Round(PriceDigits)
		if p.LessThan(MinPrice) {
			p = MinPrice
		}
		next[i] = p
		quotes[i] = model.Quote{Ticker: inst.ticker, Name: inst.name, Price: p}
	}

	if l.recorder != nil {
		if err := l.recorder.Append(model.RowFromQuotes(quotes)); err != nil {
			return nil, fmt.Errorf("record refreshed prices: %w", err)
		}
	}
	for i, inst := range l.catalog.order {
		inst.price = next[i]
	}
	log.Printf("[INFO] refreshed %d prices", len(quotes))
	return quotes, nil
}

// Valuation returns cash, the market value of all holdings and their sum.
func (l *Ledger) Valuation() model.Valuation {
	l.mu.Lock()
	defer l.mu.Unlock()

	v := model.Valuation{Cash: l.cash, HoldingsValue: decimal.Zero}
	for _, inst := range l.catalog.order {
		qty, ok := l.holdings[inst.ticker]
		if !ok {
			continue
		}
		value := inst.price.Mul(decimal.NewFromInt(qty))
		v.HoldingsValue = v.HoldingsValue.Add(value)
		v.Positions = append(v.Positions, model.Position{
			Ticker:   inst.ticker,
			Name:     inst.name,
			Quantity: qty,
			Price:    inst.price,
			Value:    value,
		})
	}
	v.TotalWorth = v.Cash.Add(v.HoldingsValue)
	return v
}

// ListPrices returns the current quotes in catalog order.
func (l *Ledger) ListPrices() []model.Quote {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.catalog.Quotes()
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cash
}

// Holdings returns a copy of the positions by ticker.
func (l *Ledger) Holdings() map[string]int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]int64, len(l.holdings))
	for k, v := range l.holdings {
		out[k] = v
	}
	return out
}

// Lookup returns the catalog instrument for ticker.
func (l *Ledger) Lookup(ticker string) (model.Quote, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	inst, ok := l.catalog.Lookup(ticker)
	if !ok {
		return model.Quote{}, false
	}
	return inst.quote(), true
}
