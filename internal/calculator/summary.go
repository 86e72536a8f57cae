package calculator

import (
	"log"

	"PaperTrader/internal/model"
)

const (
	SMAWindow = 5
	RSIPeriod = 14
)

// Summarize computes per-instrument statistics over a snapshot history.
// Instruments appear in the order their column first shows up; unknown
// cells are skipped.
func Summarize(history []model.Row) []model.PriceSummary {
	var order []string
	series := make(map[string][]float64)
	for _, row := range history {
		for _, c := range row {
			if _, seen := series[c.Name]; !seen {
				order = append(order, c.Name)
				series[c.Name] = nil
			}
			if c.Price.Valid {
				series[c.Name] = append(series[c.Name], c.Price.Decimal.InexactFloat64())
			}
		}
	}

	out := make([]model.PriceSummary, 0, len(order))
	for _, name := range order {
		prices := series[name]
		s := model.PriceSummary{Name: name, Samples: len(prices)}
		if len(prices) == 0 {
			out = append(out, s)
			continue
		}
		s.First = prices[0]
		s.Last = prices[len(prices)-1]
		s.High, s.Low, _ = CalculateRange(prices)

		if pct, err := CalculateChangePct(s.First, s.Last); err != nil {
			log.Printf("[WARN] %s change calculation failed: %v", name, err)
		} else {
			s.ChangePct = pct
		}
		if sma, err := CalculateSMA(prices, SMAWindow); err == nil {
			s.SMA = sma
		}
		if rsi, err := CalculateRSI(prices, RSIPeriod); err != nil {
			log.Printf("[WARN] %s RSI calculation failed: %v, defaulting to 50", name, err)
			s.RSI = 50
		} else {
			s.RSI = rsi
		}
		out = append(out, s)
	}
	return out
}
