package calculator

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"PaperTrader/internal/model"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestCalculateSMA(t *testing.T) {
	tests := []struct {
		prices  []float64
		period  int
		want    float64
		wantErr bool
	}{
		{[]float64{1, 2, 3, 4, 5}, 5, 3, false},
		{[]float64{1, 2, 3, 4, 5}, 2, 4.5, false},
		{[]float64{1, 2}, 3, 0, true},
		{[]float64{1, 2}, 0, 0, true},
	}
	for _, tt := range tests {
		got, err := CalculateSMA(tt.prices, tt.period)
		if (err != nil) != tt.wantErr {
			t.Errorf("SMA(%v, %d): unexpected error %v", tt.prices, tt.period, err)
			continue
		}
		if !approx(got, tt.want) {
			t.Errorf("SMA(%v, %d): expected %.2f, got %.2f", tt.prices, tt.period, tt.want, got)
		}
	}
}

func TestCalculateRSI(t *testing.T) {
	rising := make([]float64, 20)
	for i := range rising {
		rising[i] = float64(100 + i)
	}
	if rsi, _ := CalculateRSI(rising, 14); rsi != 100 {
		t.Errorf("expected 100 for monotonic rise, got %.2f", rsi)
	}

	falling := make([]float64, 20)
	for i := range falling {
		falling[i] = float64(100 - i)
	}
	if rsi, _ := CalculateRSI(falling, 14); !approx(rsi, 0) {
		t.Errorf("expected 0 for monotonic fall, got %.2f", rsi)
	}

	if rsi, _ := CalculateRSI([]float64{1, 2, 3}, 14); rsi != 50 {
		t.Errorf("expected default 50 with insufficient data, got %.2f", rsi)
	}
	if _, err := CalculateRSI(rising, 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestCalculateRange(t *testing.T) {
	high, low, err := CalculateRange([]float64{3, 9, 1, 4})
	if err != nil || high != 9 || low != 1 {
		t.Errorf("expected 9/1, got %v/%v (%v)", high, low, err)
	}
	if _, _, err := CalculateRange(nil); err == nil {
		t.Error("expected error for empty series")
	}
}

func cell(name, price string) model.Cell {
	if price == "" {
		return model.Cell{Name: name}
	}
	return model.Cell{Name: name, Price: decimal.NewNullDecimal(decimal.RequireFromString(price))}
}

func TestSummarize(t *testing.T) {
	history := []model.Row{
		{cell("A", "100"), cell("B", "")},
		{cell("A", "110"), cell("B", "20")},
		{cell("A", "99"), cell("B", "25")},
	}
	got := Summarize(history)
	if len(got) != 2 || got[0].Name != "A" || got[1].Name != "B" {
		t.Fatalf("expected summaries for A then B, got %+v", got)
	}
	a, b := got[0], got[1]
	if a.Samples != 3 || a.High != 110 || a.Low != 99 || !approx(a.ChangePct, -1) {
		t.Errorf("unexpected A summary %+v", a)
	}
	if a.SMA != 0 {
		t.Errorf("expected no SMA with 3 samples, got %.2f", a.SMA)
	}
	if b.Samples != 2 || b.First != 20 || !approx(b.ChangePct, 25) {
		t.Errorf("unexpected B summary %+v", b)
	}

	if len(Summarize(nil)) != 0 {
		t.Error("expected no summaries for empty history")
	}
}
