package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"PaperTrader/internal/ledger"
	"PaperTrader/internal/scheduler"
	"PaperTrader/internal/snapshot"
)

// Instrument is a catalog entry as written in the config file.
type Instrument struct {
	Ticker string `yaml:"ticker"`
	Name   string `yaml:"name"`
	Price  string `yaml:"price"`
}

// Config holds all application configuration.
type Config struct {
	Ledger struct {
		InitialCash string `yaml:"initial_cash"`
		Currency    string `yaml:"currency"`
	} `yaml:"ledger"`
	Instruments []Instrument `yaml:"instruments"`
	Market      struct {
		Volatility float64 `yaml:"volatility"`
		Seed       uint64  `yaml:"seed"`
	} `yaml:"market"`
	Store struct {
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
		Policy  string `yaml:"policy"`
	} `yaml:"store"`
	Schedule struct {
		AutoRefreshCron string `yaml:"auto_refresh_cron"`
	} `yaml:"schedule"`
	Logging struct {
		Quiet bool `yaml:"quiet"`
	} `yaml:"logging"`
}

// DefaultInstruments is the built-in catalog.
var DefaultInstruments = []Instrument{
	{Ticker: "1", Name: "INFOSYS", Price: "1500.00"},
	{Ticker: "2", Name: "TCS", Price: "3500.00"},
	{Ticker: "3", Name: "RELIANCE", Price: "2500.00"},
	{Ticker: "4", Name: "FLIPKART", Price: "1200.00"},
	{Ticker: "5", Name: "COALIND", Price: "400.00"},
	{Ticker: "6", Name: "BIRLA", Price: "900.00"},
	{Ticker: "7", Name: "TCL", Price: "700.00"},
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("INITIAL_CASH"); v != "" {
		cfg.Ledger.InitialCash = v
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("STORE_POLICY"); v != "" {
		cfg.Store.Policy = v
	}
	if v := os.Getenv("MARKET_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("MARKET_SEED: %w", err)
		}
		cfg.Market.Seed = seed
	}
	if v := os.Getenv("AUTO_REFRESH_CRON"); v != "" {
		cfg.Schedule.AutoRefreshCron = v
	}

	// Defaults
	if cfg.Ledger.InitialCash == "" {
		cfg.Ledger.InitialCash = "15000"
	}
	if cfg.Ledger.Currency == "" {
		cfg.Ledger.Currency = "INR"
	}
	if len(cfg.Instruments) == 0 {
		cfg.Instruments = append([]Instrument(nil), DefaultInstruments...)
	}
	if cfg.Market.Volatility == 0 {
		cfg.Market.Volatility = ledger.DefaultVolatility
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "csv"
	}
	if cfg.Store.Path == "" {
		switch cfg.Store.Backend {
		case "sqlite":
			cfg.Store.Path = "data/stock_prices.db"
		default:
			cfg.Store.Path = "stock_prices.csv"
		}
	}
	if cfg.Store.Policy == "" {
		cfg.Store.Policy = string(snapshot.PolicyPad)
	}

	return cfg, nil
}

// Validate checks that all fields are usable.
func (c *Config) Validate() error {
	cash, err := c.Cash()
	if err != nil {
		return err
	}
	if cash.IsNegative() {
		return fmt.Errorf("ledger.initial_cash must not be negative")
	}
	if money.GetCurrency(c.Ledger.Currency) == nil {
		return fmt.Errorf("ledger.currency: unknown currency %q", c.Ledger.Currency)
	}
	if len(c.Instruments) == 0 {
		return fmt.Errorf("instruments: at least one is required")
	}
	if _, err := c.InstrumentSpecs(); err != nil {
		return err
	}
	if c.Market.Volatility <= 0 || c.Market.Volatility >= 0.5 {
		return fmt.Errorf("market.volatility must be in (0, 0.5), got %v", c.Market.Volatility)
	}
	switch c.Store.Backend {
	case "csv", "sqlite", "memory":
	default:
		return fmt.Errorf("store.backend must be csv, sqlite or memory, got %q", c.Store.Backend)
	}
	if _, err := snapshot.ParsePolicy(c.Store.Policy); err != nil {
		return fmt.Errorf("store.policy: %w", err)
	}
	if c.Schedule.AutoRefreshCron != "" {
		if err := scheduler.ValidateSpec(c.Schedule.AutoRefreshCron); err != nil {
			return fmt.Errorf("schedule.auto_refresh_cron: %w", err)
		}
	}
	return nil
}

// Cash parses the initial cash balance.
func (c *Config) Cash() (decimal.Decimal, error) {
	cash, err := decimal.NewFromString(c.Ledger.InitialCash)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ledger.initial_cash: %w", err)
	}
	return cash, nil
}

// Policy returns the parsed reconciliation policy.
func (c *Config) Policy() snapshot.Policy {
	p, err := snapshot.ParsePolicy(c.Store.Policy)
	if err != nil {
		return snapshot.PolicyPad
	}
	return p
}

// InstrumentSpecs converts the configured catalog. An empty price means no
// built-in default.
func (c *Config) InstrumentSpecs() ([]ledger.InstrumentSpec, error) {
	specs := make([]ledger.InstrumentSpec, 0, len(c.Instruments))
	for _, in := range c.Instruments {
		price := decimal.Zero
		if in.Price != "" {
			p, err := decimal.NewFromString(in.Price)
			if err != nil {
				return nil, fmt.Errorf("instrument %q price: %w", in.Name, err)
			}
			price = p
		}
		specs = append(specs, ledger.InstrumentSpec{Ticker: in.Ticker, Name: in.Name, Price: price})
	}
	return specs, nil
}
