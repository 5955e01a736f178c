package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MetadataLastRunID is the metadata key holding the most recent run ID.
const MetadataLastRunID = "last_run_id"

// RenderRecord represents one rendered output file.
type RenderRecord struct {
	ID             int64
	RunID          string
	SourceFile     string
	TargetFile     string
	DirectiveCount int
	RenderedBytes  int
	RenderedAt     time.Time
}

// RenderHistory manages render history operations.
type RenderHistory struct {
	conn *Connection
}

// NewRenderHistory creates a new RenderHistory instance.
func NewRenderHistory(conn *Connection) *RenderHistory {
	return &RenderHistory{conn: conn}
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// RecordRun records the files written by one render run in a single transaction.
// Records without a RunID get a newly generated one shared across the batch.
// Returns the run ID used.
func (h *RenderHistory) RecordRun(records ...RenderRecord) (string, error) {
	if len(records) == 0 {
		return "", errors.New("no render records to store")
	}

	runID := records[0].RunID
	if runID == "" {
		runID = NewRunID()
	}

	query := `
		INSERT INTO render_history (run_id, source_file, target_file, directive_count, rendered_bytes)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, target_file) DO UPDATE SET
			directive_count = render_history.directive_count + excluded.directive_count,
			rendered_bytes = render_history.rendered_bytes + excluded.rendered_bytes,
			rendered_at = CURRENT_TIMESTAMP
	`

	err := h.conn.Transaction(func(tx *sql.Tx) error {
		for _, record := range records {
			if _, err := tx.Exec(query,
				runID,
				record.SourceFile,
				record.TargetFile,
				record.DirectiveCount,
				record.RenderedBytes,
			); err != nil {
				return fmt.Errorf("failed to insert render record for %s: %w", record.TargetFile, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}

	if err := h.SetMetadata(MetadataLastRunID, runID); err != nil {
		return "", err
	}

	return runID, nil
}

// GetRun retrieves the records of a run, ordered by target file.
// Returns an empty slice if the run is unknown.
func (h *RenderHistory) GetRun(runID string) ([]RenderRecord, error) {
	query := `
		SELECT id, run_id, source_file, target_file, directive_count, rendered_bytes, rendered_at
		FROM render_history
		WHERE run_id = ?
		ORDER BY target_file
	`

	rows, err := h.conn.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListRuns retrieves the most recent render records, newest first.
// A non-positive limit returns every record.
func (h *RenderHistory) ListRuns(limit int) ([]RenderRecord, error) {
	query := `
		SELECT id, run_id, source_file, target_file, directive_count, rendered_bytes, rendered_at
		FROM render_history
		ORDER BY id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]RenderRecord, error) {
	records := []RenderRecord{}
	for rows.Next() {
		var record RenderRecord
		if err := rows.Scan(
			&record.ID,
			&record.RunID,
			&record.SourceFile,
			&record.TargetFile,
			&record.DirectiveCount,
			&record.RenderedBytes,
			&record.RenderedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan render record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate render records: %w", err)
	}

	return records, nil
}

// Stats represents render statistics.
type Stats struct {
	TotalRuns       int
	TotalFiles      int
	TotalDirectives int
	TotalBytes      int
	LastRender      sql.NullString
}

// GetStats retrieves render statistics.
func (h *RenderHistory) GetStats() (*Stats, error) {
	var stats Stats

	err := h.conn.QueryRow(`SELECT COUNT(DISTINCT run_id), COUNT(*) FROM render_history`).
		Scan(&stats.TotalRuns, &stats.TotalFiles)
	if err != nil {
		return nil, fmt.Errorf("failed to get run count: %w", err)
	}

	err = h.conn.QueryRow(`SELECT COALESCE(SUM(directive_count), 0), COALESCE(SUM(rendered_bytes), 0) FROM render_history`).
		Scan(&stats.TotalDirectives, &stats.TotalBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to get directive totals: %w", err)
	}

	err = h.conn.QueryRow(`SELECT MAX(rendered_at) FROM render_history`).Scan(&stats.LastRender)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get last render time: %w", err)
	}

	return &stats, nil
}

// GetMetadata retrieves a metadata value.
func (h *RenderHistory) GetMetadata(key string) (string, error) {
	query := `SELECT value FROM render_metadata WHERE key = ?`

	var value string
	err := h.conn.QueryRow(query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata: %w", err)
	}

	return value, nil
}

// SetMetadata sets a metadata value.
func (h *RenderHistory) SetMetadata(key, value string) error {
	query := `
		INSERT INTO render_metadata (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := h.conn.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to set metadata: %w", err)
	}

	return nil
}
