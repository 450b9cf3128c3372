package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/vsinha/quotes/pkg/domain/entities"
	"github.com/vsinha/quotes/pkg/domain/repositories"
)

// Store keeps the quotes collection in a user-writable JSON file, falling back
// to a read-only bundled dataset when the user file is missing or malformed.
type Store struct {
	userPath    string
	bundledPath string
	logger      *zap.Logger
}

// NewStore creates a JSON-backed quote store
func NewStore(userPath, bundledPath string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		userPath:    userPath,
		bundledPath: bundledPath,
		logger:      logger,
	}
}

// Verify interface compliance
var _ repositories.QuoteRepository = (*Store)(nil)

// Path returns the user-writable collection file
func (s *Store) Path() string {
	return s.userPath
}

// LoadQuotes reads the user file, then the bundled file, then gives up with an empty collection
func (s *Store) LoadQuotes() []*entities.Quote {
	quotes, err := ReadCollection(s.userPath)
	if err == nil {
		s.logger.Debug("loaded quotes", zap.String("path", s.userPath), zap.Int("count", len(quotes)))
		return quotes
	}
	s.logger.Debug("user quotes file not available or invalid", zap.String("path", s.userPath), zap.Error(err))

	if s.bundledPath == "" {
		return []*entities.Quote{}
	}
	quotes, err = ReadCollection(s.bundledPath)
	if err != nil {
		s.logger.Debug("no bundled quotes or failed to read bundled file", zap.String("path", s.bundledPath), zap.Error(err))
		return []*entities.Quote{}
	}
	s.logger.Debug("loaded bundled quotes", zap.String("path", s.bundledPath), zap.Int("count", len(quotes)))
	return quotes
}

// SaveQuotes atomically replaces the user file with the full collection
func (s *Store) SaveQuotes(quotes []*entities.Quote) error {
	if quotes == nil {
		quotes = []*entities.Quote{}
	}
	if err := WriteJSONAtomic(s.userPath, quotes); err != nil {
		s.logger.Error("failed to save quotes", zap.String("path", s.userPath), zap.Error(err))
		return err
	}
	s.logger.Info("saved quotes", zap.String("path", s.userPath), zap.Int("count", len(quotes)))
	return nil
}

// ReadCollection decodes a JSON array of quotes. Null entries are dropped.
func ReadCollection(path string) ([]*entities.Quote, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []*entities.Quote
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode quotes file %s: %w", path, err)
	}
	quotes := make([]*entities.Quote, 0, len(raw))
	for _, q := range raw {
		if q == nil {
			continue
		}
		if q.Items == nil {
			q.Items = []entities.LineItem{}
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// WriteJSONAtomic writes v to a temporary file in the destination directory and
// renames it over path, so a crash mid-write leaves the previous file intact.
func WriteJSONAtomic(path string, v interface{}) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode quotes: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".quotes-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// ExportQuote writes a single quote as a standalone JSON document
func ExportQuote(path string, q *entities.Quote) error {
	data, err := json.MarshalIndent(q, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode quote: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file %s: %w", path, err)
	}
	return nil
}
