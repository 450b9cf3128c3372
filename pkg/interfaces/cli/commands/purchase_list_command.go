package commands

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/vsinha/quotes/internal/config"
	"github.com/vsinha/quotes/pkg/application/services/purchasing"
	"github.com/vsinha/quotes/pkg/domain/entities"
	"github.com/vsinha/quotes/pkg/infrastructure/repositories/jsonfile"
	"github.com/vsinha/quotes/pkg/interfaces/cli/output"
)

// PurchaseListConfig holds configuration for the purchase-list command
type PurchaseListConfig struct {
	File      string
	Aggregate bool
	Format    string
	Help      bool
}

// PurchaseListCommand prints the parts to order, grouped per quote or combined
type PurchaseListCommand struct {
	config   PurchaseListConfig
	settings config.Config
	out      io.Writer
	logger   *zap.Logger
}

// NewPurchaseListCommand creates a new purchase-list command
func NewPurchaseListCommand(cfg PurchaseListConfig, settings config.Config, out io.Writer, logger *zap.Logger) *PurchaseListCommand {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseListCommand{
		config:   cfg,
		settings: settings,
		out:      out,
		logger:   logger,
	}
}

// Execute runs the purchase-list command. It returns ErrNoQuotesFile when
// no collection can be found.
func (c *PurchaseListCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	quotes, err := c.loadQuotes()
	if err != nil {
		return err
	}

	mode := purchasing.PerQuote
	if c.config.Aggregate {
		mode = purchasing.Combined
	}
	report := purchasing.NewAggregator().Build(quotes, mode)
	c.logger.Debug("built purchase report",
		zap.Stringer("mode", mode),
		zap.Int("quotes", len(quotes)),
		zap.Int("groups", len(report.Groups)))

	return output.WritePurchaseReport(c.out, report, c.config.Format)
}

// loadQuotes resolves the collection: explicit file, then the configured
// store (sqlite backend) or user file, then the bundled file.
func (c *PurchaseListCommand) loadQuotes() ([]*entities.Quote, error) {
	if c.config.File != "" {
		if !fileExists(c.config.File) {
			fmt.Fprintf(c.out, "Warning: requested file %s not found.\n", c.config.File)
			return nil, fmt.Errorf("%w: %s", ErrNoQuotesFile, c.config.File)
		}
		return c.readFile(c.config.File), nil
	}

	if c.settings.Backend == config.BackendSQLite && fileExists(c.settings.SQLitePath) {
		repo, closeRepo, err := OpenRepository(c.settings, c.logger)
		if err != nil {
			return nil, err
		}
		defer closeRepo()
		return repo.LoadQuotes(), nil
	}

	for _, path := range []string{c.settings.QuotesFile, c.settings.BundledFile} {
		if fileExists(path) {
			return c.readFile(path), nil
		}
	}

	fmt.Fprintln(c.out, "No quotes file found (tried user data and bundled data). Create a quote first.")
	return nil, ErrNoQuotesFile
}

// readFile treats an unreadable collection as empty
func (c *PurchaseListCommand) readFile(path string) []*entities.Quote {
	quotes, err := jsonfile.ReadCollection(path)
	if err != nil {
		c.logger.Warn("failed to read quotes file", zap.String("path", path), zap.Error(err))
		return []*entities.Quote{}
	}
	c.logger.Debug("loaded quotes", zap.String("path", path), zap.Int("count", len(quotes)))
	return quotes
}

// showHelp displays the help message
func (c *PurchaseListCommand) showHelp() {
	fmt.Fprintf(c.out, `purchase-list - Show parts per quote for purchasing

USAGE:
    purchase-list [options]

OPTIONS:
    -file <path>        Path to quotes.json to use (overrides defaults)
    -aggregate          Merge parts across all quotes instead of per quote
    -json               Output JSON instead of a table (same as -format json)
    -format <fmt>       Output format: text, json, csv (default: text)
    -help               Show this help message

The quotes file is looked up in the user data directory, then next to the
executable under data/quotes.json. Exit status is 2 when neither exists.
`)
}
