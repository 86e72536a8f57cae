package console

import (
	"fmt"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"PaperTrader/internal/model"
)

var (
	maxMinorUnits = decimal.NewFromInt(math.MaxInt64)
	minMinorUnits = decimal.NewFromInt(math.MinInt64)
)

// FormatMoney renders amount in the given currency, e.g. "₹15,000.00".
// Amounts beyond int64 minor units are laid out with the same currency
// template from the decimal value.
func FormatMoney(amount decimal.Decimal, currency string) string {
	cur := *money.New(0, currency).Currency()
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	if minor.Cmp(minMinorUnits) >= 0 && minor.Cmp(maxMinorUnits) <= 0 {
		return cur.Formatter().Format(minor.IntPart())
	}
	return formatLargeMoney(amount, cur)
}

func formatLargeMoney(amount decimal.Decimal, cur money.Currency) string {
	digits := amount.Abs().StringFixed(int32(cur.Fraction))
	whole, frac, _ := strings.Cut(digits, ".")

	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteString(cur.Thousand)
		}
		grouped.WriteRune(r)
	}
	if frac != "" {
		grouped.WriteString(cur.Decimal)
		grouped.WriteString(frac)
	}

	out := strings.Replace(cur.Template, "1", grouped.String(), 1)
	out = strings.Replace(out, "$", cur.Grapheme, 1)
	if amount.IsNegative() {
		out = "-" + out
	}
	return out
}

// FormatPrices lists the current quotes in catalog order.
func FormatPrices(quotes []model.Quote) string {
	var b strings.Builder
	b.WriteString("\nCurrent Stock Prices:\n")
	for _, q := range quotes {
		b.WriteString(fmt.Sprintf("%s: %s (Price: %s)\n", q.Ticker, q.Name, q.Price.StringFixed(2)))
	}
	return b.String()
}

// FormatPortfolio renders the holdings table and the balance summary.
func FormatPortfolio(v model.Valuation, currency string) string {
	var b strings.Builder
	b.WriteString("\nPortfolio Summary:\n")
	if len(v.Positions) == 0 {
		b.WriteString("No stocks owned yet.\n")
	} else {
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "Stock No.\tName\tQuantity\tCurrent Price\tValue\t")
		for _, p := range v.Positions {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t\n",
				p.Ticker, p.Name, p.Quantity, p.Price.StringFixed(2), p.Value.StringFixed(2))
		}
		tw.Flush()
	}
	b.WriteString(fmt.Sprintf("\nBank Balance: %s\n", FormatMoney(v.Cash, currency)))
	b.WriteString(fmt.Sprintf("Portfolio Value: %s\n", FormatMoney(v.HoldingsValue, currency)))
	b.WriteString(fmt.Sprintf("Total Worth: %s\n", FormatMoney(v.TotalWorth, currency)))
	return b.String()
}

// FormatHistory renders per-instrument statistics over the snapshot history.
func FormatHistory(summaries []model.PriceSummary, rows int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("\nPrice History (%d snapshots):\n", rows))
	if len(summaries) == 0 {
		b.WriteString("No snapshots recorded yet.\n")
		return b.String()
	}
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Name\tSamples\tFirst\tLast\tLow\tHigh\tChange\tSMA5\tRSI14\t")
	for _, s := range summaries {
		if s.Samples == 0 {
			fmt.Fprintf(tw, "%s\t0\t-\t-\t-\t-\t-\t-\t-\t\n", s.Name)
			continue
		}
		sma := "-"
		if s.SMA > 0 {
			sma = fmt.Sprintf("%.2f", s.SMA)
		}
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%+.1f%%\t%s\t%.0f\t\n",
			s.Name, s.Samples, s.First, s.Last, s.Low, s.High, s.ChangePct, sma, s.RSI)
	}
	tw.Flush()
	return b.String()
}
