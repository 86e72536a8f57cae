package app

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"PaperTrader/internal/config"
	"PaperTrader/internal/ledger"
	"PaperTrader/internal/snapshot"
)

// Bootstrap holds the components of one trading session.
type Bootstrap struct {
	Config *config.Config
	Store  snapshot.Store
	Ledger *ledger.Ledger
}

// Open wires the session together: it opens the snapshot store, seeds the
// catalog from the latest snapshot (falling back to the built-in prices) and
// creates the ledger that records every refresh back into the store.
func Open(cfg *config.Config, opts ...ledger.Option) (*Bootstrap, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	if cfg.Store.Backend != "memory" {
		if dir := filepath.Dir(cfg.Store.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create store dir: %w", err)
			}
		}
	}
	store, err := snapshot.Open(cfg.Store.Backend, cfg.Store.Path, cfg.Policy())
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}

	l, err := newLedger(cfg, store, opts)
	if err != nil {
		store.Close()
		return nil, err
	}
	return &Bootstrap{Config: cfg, Store: store, Ledger: l}, nil
}

func newLedger(cfg *config.Config, store snapshot.Store, opts []ledger.Option) (*ledger.Ledger, error) {
	recovered, err := store.LoadLatest()
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		log.Println("[INFO] no price snapshot found, using built-in prices")
		recovered = map[string]decimal.Decimal{}
	case err != nil:
		return nil, fmt.Errorf("load latest prices: %w", err)
	default:
		log.Printf("[INFO] restored %d prices from latest snapshot", len(recovered))
	}

	specs, err := cfg.InstrumentSpecs()
	if err != nil {
		return nil, err
	}
	catalog, err := ledger.SeedCatalog(specs, recovered)
	if err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	cash, err := cfg.Cash()
	if err != nil {
		return nil, err
	}

	base := []ledger.Option{
		ledger.WithPerturber(ledger.NewUniformPerturber(cfg.Market.Volatility, cfg.Market.Seed)),
		ledger.WithRecorder(store),
	}
	return ledger.NewLedger(catalog, cash, append(base, opts...)...)
}

// Close releases the snapshot store.
func (b *Bootstrap) Close() error {
	return b.Store.Close()
}
