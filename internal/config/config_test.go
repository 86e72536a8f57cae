package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"INITIAL_CASH", "STORE_BACKEND", "STORE_PATH", "STORE_POLICY", "MARKET_SEED", "AUTO_REFRESH_CRON"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Ledger.InitialCash != "15000" {
		t.Errorf("expected 15000 initial cash, got %s", cfg.Ledger.InitialCash)
	}
	if len(cfg.Instruments) != 7 || cfg.Instruments[0].Name != "INFOSYS" || cfg.Instruments[6].Name != "TCL" {
		t.Errorf("unexpected default catalog %+v", cfg.Instruments)
	}
	if cfg.Store.Backend != "csv" || cfg.Store.Path != "stock_prices.csv" || cfg.Store.Policy != "pad" {
		t.Errorf("unexpected store defaults %+v", cfg.Store)
	}
	if cfg.Market.Volatility != 0.10 {
		t.Errorf("expected volatility 0.10, got %v", cfg.Market.Volatility)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
ledger:
  initial_cash: "2500.50"
  currency: USD
instruments:
  - {ticker: "AAPL", name: Apple, price: "190.10"}
  - {ticker: "MSFT", name: Microsoft}
market:
  volatility: 0.2
  seed: 9
store:
  backend: sqlite
  policy: reject
schedule:
  auto_refresh_cron: "@every 30s"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MARKET_SEED", "77")
	t.Setenv("STORE_PATH", "/tmp/x.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Market.Seed != 77 {
		t.Errorf("expected env seed 77, got %d", cfg.Market.Seed)
	}
	if cfg.Store.Path != "/tmp/x.db" || cfg.Policy() != "reject" {
		t.Errorf("unexpected store %+v", cfg.Store)
	}
	cash, _ := cfg.Cash()
	if cash.String() != "2500.5" {
		t.Errorf("expected cash 2500.5, got %s", cash)
	}

	specs, err := cfg.InstrumentSpecs()
	if err != nil {
		t.Fatal(err)
	}
	if len(specs) != 2 || specs[0].Price.String() != "190.1" || !specs[1].Price.IsZero() {
		t.Errorf("unexpected specs %+v", specs)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative cash", func(c *Config) { c.Ledger.InitialCash = "-1" }, "initial_cash"},
		{"bad cash", func(c *Config) { c.Ledger.InitialCash = "lots" }, "initial_cash"},
		{"volatility too high", func(c *Config) { c.Market.Volatility = 0.5 }, "volatility"},
		{"bad backend", func(c *Config) { c.Store.Backend = "parquet" }, "backend"},
		{"bad policy", func(c *Config) { c.Store.Policy = "widen" }, "policy"},
		{"bad cron", func(c *Config) { c.Schedule.AutoRefreshCron = "every now and then" }, "auto_refresh_cron"},
		{"bad currency", func(c *Config) { c.Ledger.Currency = "XYZW" }, "currency"},
		{"bad price", func(c *Config) { c.Instruments[0].Price = "1,5" }, "price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad_DefaultsDoNotAlias(t *testing.T) {
	clearEnv(t)
	cfg, _ := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	cfg.Instruments[0].Name = "CHANGED"
	if DefaultInstruments[0].Name != "INFOSYS" {
		t.Error("mutating loaded config changed the built-in catalog")
	}
}
