package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/subcommands"

	"PaperTrader/internal/app"
	"PaperTrader/internal/calculator"
	"PaperTrader/internal/config"
	"PaperTrader/internal/console"
	"PaperTrader/internal/scheduler"
)

// openSession loads the config and wires the ledger to its snapshot store.
func openSession() (*app.Bootstrap, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Logging.Quiet {
		log.SetOutput(io.Discard)
	}
	log.Printf("[INFO] PaperTrader starting (config %s, store %s:%s)", *configPath, cfg.Store.Backend, cfg.Store.Path)
	return app.Open(cfg)
}

// playCmd runs the interactive menu.
type playCmd struct{}

func (*playCmd) Name() string     { return "play" }
func (*playCmd) Synopsis() string { return "trade interactively from the menu (default)" }
func (*playCmd) Usage() string {
	return `papertrader [-config <file>] play

  Restores the latest prices and starts the trading menu.
`
}
func (*playCmd) SetFlags(*flag.FlagSet) {}

func (c *playCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := openSession()
	if err != nil {
		log.Printf("[FATAL] %v", err)
		return subcommands.ExitFailure
	}
	defer b.Close()

	fmt.Print(console.FormatPrices(b.Ledger.ListPrices()))
	fmt.Printf("Initial Bank Balance: %s\n", console.FormatMoney(b.Ledger.Cash(), b.Config.Ledger.Currency))

	var refresh <-chan struct{}
	if spec := b.Config.Schedule.AutoRefreshCron; spec != "" {
		sched, err := scheduler.NewScheduler(spec)
		if err != nil {
			log.Printf("[FATAL] %v", err)
			return subcommands.ExitFailure
		}
		sched.Start()
		defer sched.Stop()
		refresh = sched.Requests()
	}

	session := console.NewSession(b.Ledger, b.Store, b.Config.Ledger.Currency)
	if err := console.Run(ctx, session, os.Stdin, os.Stdout, refresh); err != nil {
		log.Printf("[ERROR] read input: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// pricesCmd prints the restored prices.
type pricesCmd struct{}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "show the current instrument prices" }
func (*pricesCmd) Usage() string {
	return `papertrader prices

  Prints the prices restored from the latest snapshot.
`
}
func (*pricesCmd) SetFlags(*flag.FlagSet) {}

func (*pricesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := openSession()
	if err != nil {
		log.Printf("[FATAL] %v", err)
		return subcommands.ExitFailure
	}
	defer b.Close()

	fmt.Print(console.FormatPrices(b.Ledger.ListPrices()))
	return subcommands.ExitSuccess
}

// refreshCmd runs refreshes without the menu.
type refreshCmd struct {
	count int
}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "refresh prices and record snapshots" }
func (*refreshCmd) Usage() string {
	return `papertrader refresh [-n <count>]

  Refreshes every price count times, appending one snapshot each time.
`
}

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.count, "n", 1, "number of refreshes")
}

func (c *refreshCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.count <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -n must be positive")
		return subcommands.ExitUsageError
	}
	b, err := openSession()
	if err != nil {
		log.Printf("[FATAL] %v", err)
		return subcommands.ExitFailure
	}
	defer b.Close()

	for i := 0; i < c.count; i++ {
		if _, err := b.Ledger.RefreshPrices(); err != nil {
			log.Printf("[ERROR] refresh %d/%d: %v", i+1, c.count, err)
			return subcommands.ExitFailure
		}
	}
	fmt.Print(console.FormatPrices(b.Ledger.ListPrices()))
	return subcommands.ExitSuccess
}

// historyCmd summarizes the snapshot history.
type historyCmd struct{}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "summarize the recorded price history" }
func (*historyCmd) Usage() string {
	return `papertrader history

  Prints range, change, SMA and RSI per instrument over all snapshots.
`
}
func (*historyCmd) SetFlags(*flag.FlagSet) {}

func (*historyCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := openSession()
	if err != nil {
		log.Printf("[FATAL] %v", err)
		return subcommands.ExitFailure
	}
	defer b.Close()

	rows, err := b.Store.History()
	if err != nil {
		log.Printf("[ERROR] read history: %v", err)
		return subcommands.ExitFailure
	}
	fmt.Print(console.FormatHistory(calculator.Summarize(rows), len(rows)))
	return subcommands.ExitSuccess
}
