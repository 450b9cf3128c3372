package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config holds the locations and settings shared by the quotes tools
type Config struct {
	DataDir     string
	QuotesFile  string
	BundledFile string
	Backend     string
	SQLitePath  string
	NamePrefix  string
	LogLevel    string
	LogFile     string
}

// Load loads configuration from environment with defaults.
// Precedence: explicit env var > .env file (if loaded by the caller) > default.
func Load() Config {
	cfg := Config{}
	cfg.DataDir = getEnv("QUOTES_DATA_DIR", defaultDataDir())
	cfg.QuotesFile = getEnv("QUOTES_FILE", filepath.Join(cfg.DataDir, "quotes.json"))
	cfg.BundledFile = getEnv("QUOTES_BUNDLED_FILE", defaultBundledFile())
	cfg.Backend = strings.ToLower(getEnv("QUOTES_BACKEND", BackendJSON))
	cfg.SQLitePath = getEnv("QUOTES_SQLITE_PATH", filepath.Join(cfg.DataDir, "quotes.db"))
	cfg.NamePrefix = getEnv("QUOTES_NAME_PREFIX", "ARCS")
	cfg.LogLevel = getEnv("QUOTES_LOG_LEVEL", "info")
	cfg.LogFile = getEnv("QUOTES_LOG_FILE", filepath.Join(cfg.DataDir, "quotes.log"))
	return cfg
}

// Validate checks values that have a closed set of options
func (c Config) Validate() error {
	switch c.Backend {
	case BackendJSON, BackendSQLite:
		return nil
	default:
		return fmt.Errorf("unsupported backend %q (expected %s or %s)", c.Backend, BackendJSON, BackendSQLite)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".arcsoftware"
	}
	return filepath.Join(home, ".arcsoftware")
}

// defaultBundledFile locates the read-only dataset shipped next to the executable
func defaultBundledFile() string {
	exe, err := os.Executable()
	if err != nil {
		return filepath.Join("data", "quotes.json")
	}
	return filepath.Join(filepath.Dir(exe), "data", "quotes.json")
}
