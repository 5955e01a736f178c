// Package pathutil provides centralized path management for rendered ledger files.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MainFileName is the file that receives undated directives (options, plugins, includes).
const MainFileName = "main.beancount"

// PathResolver manages paths for ledger files and the render history database.
type PathResolver struct {
	ledgerRoot   string
	databasePath string
}

// Config represents the configuration for PathResolver.
type Config struct {
	// LedgerRoot is the root directory for rendered ledger files (e.g., ~/accounting/beancount)
	LedgerRoot string
	// DatabasePath is the path to the SQLite render history database
	DatabasePath string
}

// New creates a new PathResolver with the given configuration.
// If DatabasePath is empty, it defaults to {LedgerRoot}/.render/history.db
func New(config Config) *PathResolver {
	dbPath := config.DatabasePath
	if dbPath == "" {
		dbPath = filepath.Join(config.LedgerRoot, ".render", "history.db")
	}

	return &PathResolver{
		ledgerRoot:   config.LedgerRoot,
		databasePath: dbPath,
	}
}

// GetLedgerRoot returns the ledger root directory.
func (p *PathResolver) GetLedgerRoot() string {
	return p.ledgerRoot
}

// GetDatabasePath returns the database file path.
func (p *PathResolver) GetDatabasePath() string {
	return p.databasePath
}

// GetMainFilePath returns the path of the file holding undated directives.
func (p *PathResolver) GetMainFilePath() string {
	return filepath.Join(p.ledgerRoot, MainFileName)
}

// GetYearDir returns the directory path for a year.
// Example: ~/accounting/beancount/2014
func (p *PathResolver) GetYearDir(year string) string {
	return filepath.Join(p.ledgerRoot, year)
}

// GetMonthFilePath returns the file path for a month.
// yearMonth should be in YYYY-MM format.
// Example: ~/accounting/beancount/2014/2014-05.beancount
func (p *PathResolver) GetMonthFilePath(yearMonth string) (string, error) {
	parts := strings.Split(yearMonth, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return "", fmt.Errorf("invalid year-month format: %s. Expected YYYY-MM", yearMonth)
	}

	filename := fmt.Sprintf("%s.beancount", yearMonth)
	return filepath.Join(p.GetYearDir(parts[0]), filename), nil
}

// EnsureDir creates a directory if it doesn't exist.
// It creates all parent directories as needed (like mkdir -p).
func (p *PathResolver) EnsureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	return nil
}

// EnsureParentDir ensures the parent directory of a file exists.
func (p *PathResolver) EnsureParentDir(filePath string) error {
	return p.EnsureDir(filepath.Dir(filePath))
}

// FileExists checks if a file exists.
func (p *PathResolver) FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}
