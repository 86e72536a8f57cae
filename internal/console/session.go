package console

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"PaperTrader/internal/calculator"
	"PaperTrader/internal/ledger"
	"PaperTrader/internal/snapshot"
)

const menuText = `
Stock Market Menu
1. View Portfolio
2. Buy Stock
3. Sell Stock
4. Refresh Prices
5. Show Current Prices
6. Exit
7. Price History
`

type step int

const (
	stepMenu step = iota
	stepBuyTicker
	stepBuyQuantity
	stepSellTicker
	stepSellQuantity
)

// Session is the line-driven menu over one ledger. It is not safe for
// concurrent use; Run drives it from a single goroutine.
type Session struct {
	Ledger   *ledger.Ledger
	Store    snapshot.Store
	Currency string

	step   step
	ticker string
}

// NewSession creates a menu session.
func NewSession(l *ledger.Ledger, store snapshot.Store, currency string) *Session {
	return &Session{Ledger: l, Store: store, Currency: currency}
}

// Prompt returns the text to show before reading the next line.
func (s *Session) Prompt() string {
	switch s.step {
	case stepBuyTicker:
		return "Enter stock number to buy: "
	case stepSellTicker:
		return "Enter stock number to sell: "
	case stepBuyQuantity, stepSellQuantity:
		return "Enter quantity: "
	default:
		return menuText + "Enter choice (1-7): "
	}
}

// HandleLine processes one input line and returns the reply. quit is true
// once the user chose to exit.
func (s *Session) HandleLine(line string) (reply string, quit bool) {
	line = strings.TrimSpace(line)
	switch s.step {
	case stepBuyTicker, stepSellTicker:
		if line == "" {
			s.step = stepMenu
			return "Invalid input.\n", false
		}
		s.ticker = s.resolveTicker(line)
		if s.step == stepBuyTicker {
			s.step = stepBuyQuantity
		} else {
			s.step = stepSellQuantity
		}
		return "", false
	case stepBuyQuantity, stepSellQuantity:
		buying := s.step == stepBuyQuantity
		s.step = stepMenu
		qty, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return "Invalid input.\n", false
		}
		if buying {
			return s.buy(s.ticker, qty), false
		}
		return s.sell(s.ticker, qty), false
	}

	switch line {
	case "1":
		return FormatPortfolio(s.Ledger.Valuation(), s.Currency), false
	case "2":
		s.step = stepBuyTicker
		return "", false
	case "3":
		s.step = stepSellTicker
		return "", false
	case "4":
		return s.Refresh(), false
	case "5":
		return FormatPrices(s.Ledger.ListPrices()), false
	case "6":
		return "Exiting program. Goodbye!\n", true
	case "7":
		return s.history(), false
	default:
		return "Invalid choice.\n", false
	}
}

// Refresh moves all prices and returns the new price list.
func (s *Session) Refresh() string {
	quotes, err := s.Ledger.RefreshPrices()
	if err != nil {
		log.Printf("[ERROR] refresh prices: %v", err)
		return fmt.Sprintf("Could not refresh prices: %v\n", err)
	}
	return "\nAll stock prices updated.\n" + FormatPrices(quotes)
}

// resolveTicker maps numeric input such as "01" or "+1" onto the catalog
// ticker "1". Input that matches no such ticker is passed through as typed.
func (s *Session) resolveTicker(input string) string {
	if s.hasTicker(input) {
		return input
	}
	n, err := strconv.Atoi(input)
	if err != nil {
		return input
	}
	if canonical := strconv.Itoa(n); s.hasTicker(canonical) {
		return canonical
	}
	return input
}

func (s *Session) hasTicker(ticker string) bool {
	_, ok := s.Ledger.Lookup(ticker)
	return ok
}

func (s *Session) buy(ticker string, qty int64) string {
	cost, err := s.Ledger.Buy(ticker, qty)
	if err != nil {
		return userMessage(err)
	}
	q, _ := s.Ledger.Lookup(ticker)
	return fmt.Sprintf("Bought %d shares of %s for %s\n", qty, q.Name, FormatMoney(cost, s.Currency))
}

func (s *Session) sell(ticker string, qty int64) string {
	proceeds, err := s.Ledger.Sell(ticker, qty)
	if err != nil {
		return userMessage(err)
	}
	q, _ := s.Ledger.Lookup(ticker)
	return fmt.Sprintf("Sold %d shares of %s for %s\n", qty, q.Name, FormatMoney(proceeds, s.Currency))
}

func (s *Session) history() string {
	rows, err := s.Store.History()
	if err != nil {
		log.Printf("[ERROR] read price history: %v", err)
		return fmt.Sprintf("Could not read price history: %v\n", err)
	}
	return FormatHistory(calculator.Summarize(rows), len(rows))
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, ledger.ErrUnknownInstrument):
		return "Invalid stock number.\n"
	case errors.Is(err, ledger.ErrInvalidQuantity):
		return "Quantity must be positive.\n"
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return "Not enough balance.\n"
	case errors.Is(err, ledger.ErrUnknownPosition):
		return "Not enough shares to sell.\n"
	default:
		log.Printf("[ERROR] trade: %v", err)
		return fmt.Sprintf("Trade failed: %v\n", err)
	}
}
