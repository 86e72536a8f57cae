package snapshot

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"testing"

	"github.com/shopspring/decimal"

	"PaperTrader/internal/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// row builds a fully known row from name/price pairs.
func row(kv ...string) model.Row {
	r := make(model.Row, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		r = append(r, model.Cell{Name: kv[i], Price: decimal.NewNullDecimal(d(kv[i+1]))})
	}
	return r
}

type opener func(t *testing.T, policy Policy) Store

func backends() map[string]opener {
	return map[string]opener{
		"memory": func(t *testing.T, policy Policy) Store { return NewMemoryStore(policy) },
		"csv": func(t *testing.T, policy Policy) Store {
			s, err := OpenCSVStore(filepath.Join(t.TempDir(), "prices.csv"), policy)
			if err != nil {
				t.Fatalf("open csv: %v", err)
			}
			return s
		},
		"sqlite": func(t *testing.T, policy Policy) Store {
			s, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "prices.db"), policy)
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func TestStore_EmptyThenLatest(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			s := open(t, PolicyPad)
			if _, err := s.LoadLatest(); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound on empty store, got %v", err)
			}
			if s.Schema() != nil {
				t.Errorf("expected nil schema, got %v", s.Schema())
			}

			if err := s.Append(row("A", "100.00")); err != nil {
				t.Fatalf("append: %v", err)
			}
			got, err := s.LoadLatest()
			if err != nil {
				t.Fatalf("load latest: %v", err)
			}
			if len(got) != 1 || !got["A"].Equal(d("100")) {
				t.Errorf("expected {A:100.00}, got %v", got)
			}
			if !slices.Equal(s.Schema(), []string{"A"}) {
				t.Errorf("expected schema [A], got %v", s.Schema())
			}
		})
	}
}

func TestStore_LatestIsLastRow(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			s := open(t, PolicyPad)
			const n = 25
			for i := 1; i <= n; i++ {
				p := fmt.Sprintf("%d.%02d", i, i)
				if err := s.Append(row("A", p, "B", "1."+fmt.Sprint(i%10))); err != nil {
					t.Fatalf("append %d: %v", i, err)
				}
				got, err := s.LoadLatest()
				if err != nil {
					t.Fatal(err)
				}
				if !got["A"].Equal(d(p)) {
					t.Fatalf("after %d appends expected A=%s, got %s", i, p, got["A"])
				}
			}

			hist, err := s.History()
			if err != nil {
				t.Fatal(err)
			}
			if len(hist) != n {
				t.Fatalf("expected %d rows, got %d", n, len(hist))
			}
			if first := hist[0].Known()["A"]; !first.Equal(d("1.01")) {
				t.Errorf("expected oldest first, got A=%s", first)
			}
		})
	}
}

func TestStore_PadPolicy(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			s := open(t, PolicyPad)
			if err := s.Append(row("A", "10", "B", "20")); err != nil {
				t.Fatal(err)
			}
			// B removed and C added since the store was created; order swapped.
			if err := s.Append(row("C", "30", "A", "11")); err != nil {
				t.Fatalf("padded append: %v", err)
			}
			if !slices.Equal(s.Schema(), []string{"A", "B"}) {
				t.Errorf("schema changed: %v", s.Schema())
			}

			got, err := s.LoadLatest()
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 1 || !got["A"].Equal(d("11")) {
				t.Errorf("expected only A=11 known, got %v", got)
			}

			hist, _ := s.History()
			last := hist[len(hist)-1]
			if len(last) != 2 || last[1].Name != "B" || last[1].Price.Valid {
				t.Errorf("expected B padded as unknown, got %+v", last)
			}

			if err := s.Append(row("C", "1")); !errors.Is(err, ErrSchemaMismatch) {
				t.Errorf("expected ErrSchemaMismatch for row with no schema column, got %v", err)
			}
		})
	}
}

func TestStore_RejectPolicy(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			s := open(t, PolicyReject)
			if err := s.Append(row("A", "10", "B", "20")); err != nil {
				t.Fatal(err)
			}
			if err := s.Append(row("B", "21", "A", "11")); err != nil {
				t.Fatalf("reordered columns should be accepted: %v", err)
			}
			for _, r := range []model.Row{row("A", "12"), row("A", "12", "B", "22", "C", "1")} {
				if err := s.Append(r); !errors.Is(err, ErrSchemaMismatch) {
					t.Errorf("expected ErrSchemaMismatch for %v, got %v", r.Names(), err)
				}
			}
			hist, _ := s.History()
			if len(hist) != 2 {
				t.Errorf("rejected rows were written: %d rows", len(hist))
			}
			got, _ := s.LoadLatest()
			if !got["A"].Equal(d("11")) || !got["B"].Equal(d("21")) {
				t.Errorf("expected last accepted row, got %v", got)
			}
		})
	}
}

func TestStore_InvalidRows(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			s := open(t, PolicyPad)
			if err := s.Append(model.Row{}); err == nil {
				t.Error("expected error for empty row")
			}
			if err := s.Append(row("A", "1", "A", "2")); err == nil {
				t.Error("expected error for duplicate column")
			}
			if _, err := s.LoadLatest(); !errors.Is(err, ErrNotFound) {
				t.Errorf("invalid rows must not leave the store non-empty, got %v", err)
			}
		})
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want Policy
		ok   bool
	}{
		{"pad", PolicyPad, true},
		{" Reject ", PolicyReject, true},
		{"widen", "", false},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParsePolicy(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open("parquet", "x", PolicyPad); err == nil {
		t.Error("expected error for unknown backend")
	}
}
