package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/vsinha/quotes/internal/config"
	"github.com/vsinha/quotes/internal/observability/logger"
	"github.com/vsinha/quotes/pkg/interfaces/cli/commands"
)

func main() {
	// Optional .env next to the working directory
	_ = godotenv.Load()

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: quotes <command> [flags]; run 'quotes help' for the list of commands\n")
	}
	flag.Parse()

	settings := config.Load()
	log, err := logger.New(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	repo, closeRepo, err := commands.OpenRepository(settings, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cmd := commands.NewQuoteCommand(settings, repo, os.Stdout, log)
	ctx := context.Background()

	err = cmd.Execute(ctx, flag.Args())
	if cerr := closeRepo(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		log.Sync()
		os.Exit(1)
	}
}
