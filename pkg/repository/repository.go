// Package repository provides the repository pattern for rendered ledger files.
package repository

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shunichi-ikebuchi/beancount-ledger/pkg/beancount"
	"github.com/shunichi-ikebuchi/beancount-ledger/pkg/pathutil"
	"github.com/shunichi-ikebuchi/beancount-ledger/pkg/render"
)

// Repository defines the interface for ledger file operations.
type Repository interface {
	// AppendLedger renders a ledger and appends it to a monthly file
	AppendLedger(yearMonth string, ledger beancount.Ledger, comment ...string) (int, error)

	// AppendMain renders a ledger and appends it to the main file
	AppendMain(ledger beancount.Ledger, comment ...string) (int, error)

	// WriteLedger renders a ledger into a file, replacing its content
	WriteLedger(path string, ledger beancount.Ledger) (int, error)

	// ReadMonthFile reads the content of a monthly file
	ReadMonthFile(yearMonth string) (string, error)

	// MonthFileExists checks if a monthly file exists
	MonthFileExists(yearMonth string) bool

	// GetMonthFilesInYear gets all monthly files in a year
	GetMonthFilesInYear(year string) ([]string, error)

	// EnsureMonthFile ensures a monthly file exists with header
	EnsureMonthFile(yearMonth string) error
}

// FileSystemRepository is a file system implementation of Repository.
type FileSystemRepository struct {
	pathResolver *pathutil.PathResolver
	logger       *slog.Logger
	now          func() time.Time
}

var _ Repository = (*FileSystemRepository)(nil)

// NewFileSystemRepository creates a new FileSystemRepository.
// A nil logger uses slog.Default().
func NewFileSystemRepository(pathResolver *pathutil.PathResolver, logger *slog.Logger) *FileSystemRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSystemRepository{
		pathResolver: pathResolver,
		logger:       logger,
		now:          time.Now,
	}
}

// AppendLedger renders the ledger and appends it to a monthly file.
// It creates the file if it doesn't exist. The ledger is rendered into memory first,
// so a render error leaves the file untouched. Returns the number of bytes appended.
func (r *FileSystemRepository) AppendLedger(yearMonth string, ledger beancount.Ledger, comment ...string) (int, error) {
	filePath, err := r.pathResolver.GetMonthFilePath(yearMonth)
	if err != nil {
		return 0, fmt.Errorf("failed to get month file path: %w", err)
	}

	content, err := renderContent(ledger, comment...)
	if err != nil {
		return 0, err
	}

	if err := r.EnsureMonthFile(yearMonth); err != nil {
		return 0, fmt.Errorf("failed to ensure month file: %w", err)
	}

	return r.appendFile(filePath, content)
}

// AppendMain renders the ledger and appends it to the main file.
func (r *FileSystemRepository) AppendMain(ledger beancount.Ledger, comment ...string) (int, error) {
	filePath := r.pathResolver.GetMainFilePath()

	content, err := renderContent(ledger, comment...)
	if err != nil {
		return 0, err
	}

	if !r.pathResolver.FileExists(filePath) {
		if err := r.createWithHeader(filePath, "main"); err != nil {
			return 0, err
		}
	}

	return r.appendFile(filePath, content)
}

// WriteLedger renders the ledger into path, replacing any existing content.
func (r *FileSystemRepository) WriteLedger(path string, ledger beancount.Ledger) (int, error) {
	content, err := renderContent(ledger)
	if err != nil {
		return 0, err
	}

	if err := r.pathResolver.EnsureParentDir(path); err != nil {
		return 0, fmt.Errorf("failed to ensure parent directory: %w", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return 0, fmt.Errorf("failed to write file: %w", err)
	}

	r.logger.Debug("Wrote ledger", "path", path, "directives", ledger.Len(), "bytes", len(content))
	return len(content), nil
}

// ReadMonthFile reads the content of a monthly file.
// Returns empty string if file doesn't exist.
func (r *FileSystemRepository) ReadMonthFile(yearMonth string) (string, error) {
	filePath, err := r.pathResolver.GetMonthFilePath(yearMonth)
	if err != nil {
		return "", fmt.Errorf("failed to get month file path: %w", err)
	}

	if !r.pathResolver.FileExists(filePath) {
		return "", nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	return string(data), nil
}

// MonthFileExists checks if a monthly file exists.
func (r *FileSystemRepository) MonthFileExists(yearMonth string) bool {
	filePath, err := r.pathResolver.GetMonthFilePath(yearMonth)
	if err != nil {
		return false
	}

	return r.pathResolver.FileExists(filePath)
}

// GetMonthFilesInYear gets all monthly files in a year.
// Returns a slice of year-month strings (e.g., ["2014-01", "2014-02"]).
func (r *FileSystemRepository) GetMonthFilesInYear(year string) ([]string, error) {
	yearDir := r.pathResolver.GetYearDir(year)
	if !r.pathResolver.FileExists(yearDir) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(yearDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read year directory: %w", err)
	}

	var monthFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if filepath.Ext(name) == ".beancount" {
			monthFiles = append(monthFiles, name[:len(name)-len(".beancount")])
		}
	}

	return monthFiles, nil
}

// EnsureMonthFile ensures a monthly file exists with header.
// If the file already exists, this is a no-op.
func (r *FileSystemRepository) EnsureMonthFile(yearMonth string) error {
	filePath, err := r.pathResolver.GetMonthFilePath(yearMonth)
	if err != nil {
		return fmt.Errorf("failed to get month file path: %w", err)
	}

	if r.pathResolver.FileExists(filePath) {
		return nil
	}

	return r.createWithHeader(filePath, yearMonth)
}

func (r *FileSystemRepository) createWithHeader(filePath, label string) error {
	if err := r.pathResolver.EnsureParentDir(filePath); err != nil {
		return fmt.Errorf("failed to ensure parent directory: %w", err)
	}

	if err := os.WriteFile(filePath, []byte(r.generateFileHeader(label)), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	r.logger.Debug("Created ledger file", "path", filePath)
	return nil
}

func (r *FileSystemRepository) appendFile(filePath string, content []byte) (int, error) {
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to open file for appending: %w", err)
	}
	defer f.Close()

	n, err := f.Write(content)
	if err != nil {
		return n, fmt.Errorf("failed to write to file: %w", err)
	}

	return n, nil
}

// generateFileHeader generates a header comment for a ledger file.
func (r *FileSystemRepository) generateFileHeader(label string) string {
	now := r.now().Format(time.RFC3339)
	return fmt.Sprintf("; Beancount file for %s\n; Generated at %s\n\n", label, now)
}

// renderContent renders the ledger after an optional comment line.
func renderContent(ledger beancount.Ledger, comment ...string) ([]byte, error) {
	var buf bytes.Buffer
	if len(comment) > 0 && comment[0] != "" {
		fmt.Fprintf(&buf, "; %s\n", comment[0])
	}

	if err := render.Render(&buf, ledger); err != nil {
		return nil, fmt.Errorf("failed to render ledger: %w", err)
	}

	return buf.Bytes(), nil
}

// SplitByMonth groups directives by the YYYY-MM of their date, keeping document order
// within each group. Undated directives are grouped under the empty key.
func SplitByMonth(ledger beancount.Ledger) map[string]beancount.Ledger {
	groups := make(map[string]beancount.Ledger)
	for _, d := range ledger.Directives {
		key := ""
		if dated, ok := d.(beancount.Dated); ok {
			key = dated.DirectiveDate().Month()
		}
		groups[key] = groups[key].Add(d)
	}
	return groups
}
