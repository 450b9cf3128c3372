package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/vsinha/quotes/internal/config"
	"github.com/vsinha/quotes/pkg/domain/repositories"
	"github.com/vsinha/quotes/pkg/infrastructure/repositories/jsonfile"
	"github.com/vsinha/quotes/pkg/infrastructure/repositories/sqlite"
)

// ErrNoQuotesFile is returned when no quotes collection can be located
var ErrNoQuotesFile = errors.New("no quotes file found")

// OpenRepository opens the configured quote store. The returned close
// function releases any database handle.
func OpenRepository(settings config.Config, logger *zap.Logger) (repositories.QuoteRepository, func() error, error) {
	if err := settings.Validate(); err != nil {
		return nil, nil, err
	}

	store := jsonfile.NewStore(settings.QuotesFile, settings.BundledFile, logger)
	if settings.Backend != config.BackendSQLite {
		return store, func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(settings.SQLitePath), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := sqlite.Open(settings.SQLitePath, store, logger)
	if err != nil {
		return nil, nil, err
	}
	return db, db.Close, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
