package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to the YAML config file (env PAPERTRADER_CONFIG)")

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&playCmd{}, "")
	subcommands.Register(&pricesCmd{}, "")
	subcommands.Register(&refreshCmd{}, "")
	subcommands.Register(&historyCmd{}, "")

	flag.Parse()
	if v := os.Getenv("PAPERTRADER_CONFIG"); v != "" && !isFlagSet("config") {
		*configPath = v
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if flag.NArg() == 0 {
		play := &playCmd{}
		os.Exit(int(play.Execute(ctx, flag.NewFlagSet(play.Name(), flag.ExitOnError))))
	}
	os.Exit(int(subcommands.Execute(ctx)))
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
