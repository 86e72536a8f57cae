package console

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"PaperTrader/internal/model"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount string
		cur    string
		want   string
	}{
		{"15000", "USD", "$15,000.00"},
		{"0.005", "USD", "$0.01"},
		{"-42.5", "USD", "-$42.50"},
		{"92233720368547758.07", "USD", "$92,233,720,368,547,758.07"},
		{"1e20", "USD", "$100,000,000,000,000,000,000.00"},
		{"-1234567890123456789012.345", "USD", "-$1,234,567,890,123,456,789,012.35"},
	}
	for _, tt := range tests {
		got := FormatMoney(decimal.RequireFromString(tt.amount), tt.cur)
		if got != tt.want {
			t.Errorf("FormatMoney(%s, %s): expected %q, got %q", tt.amount, tt.cur, tt.want, got)
		}
	}
}

func TestFormatPortfolio_Empty(t *testing.T) {
	v := model.Valuation{Cash: decimal.NewFromInt(10), HoldingsValue: decimal.Zero, TotalWorth: decimal.NewFromInt(10)}
	out := FormatPortfolio(v, "USD")
	if !strings.Contains(out, "No stocks owned yet.") || !strings.Contains(out, "Total Worth: $10.00") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestFormatHistory_Empty(t *testing.T) {
	if out := FormatHistory(nil, 0); !strings.Contains(out, "No snapshots recorded yet.") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
