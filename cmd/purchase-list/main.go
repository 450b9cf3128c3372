package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/vsinha/quotes/internal/config"
	"github.com/vsinha/quotes/internal/observability/logger"
	"github.com/vsinha/quotes/pkg/interfaces/cli/commands"
)

func main() {
	_ = godotenv.Load()

	// Command line flags
	var (
		file      = flag.String("file", "", "Path to quotes.json to use (overrides defaults)")
		aggregate = flag.Bool("aggregate", false, "Merge parts across all quotes")
		jsonOut   = flag.Bool("json", false, "Output JSON instead of a table")
		format    = flag.String("format", "text", "Output format: text, json, csv")
		help      = flag.Bool("help", false, "Show help message")
	)
	flag.StringVar(file, "f", "", "Shorthand for -file")

	flag.Parse()

	if *jsonOut {
		*format = "json"
	}

	settings := config.Load()
	log, err := logger.New(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := commands.PurchaseListConfig{
		File:      *file,
		Aggregate: *aggregate,
		Format:    *format,
		Help:      *help,
	}

	cmd := commands.NewPurchaseListCommand(cfg, settings, os.Stdout, log)
	ctx := context.Background()

	if err := cmd.Execute(ctx); err != nil {
		log.Sync()
		if errors.Is(err, commands.ErrNoQuotesFile) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
