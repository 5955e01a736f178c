// Package db provides SQLite database management for render history and metadata.
package db

// Schema defines the SQL statements to create database tables.
const Schema = `
-- Render history table
-- One row per rendered output file
CREATE TABLE IF NOT EXISTS render_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,              -- UUID shared by all files of one run
    source_file TEXT NOT NULL,         -- Input document path
    target_file TEXT NOT NULL,         -- Output path, '-' for stdout
    directive_count INTEGER NOT NULL,
    rendered_bytes INTEGER NOT NULL,
    rendered_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(run_id, target_file)
);

CREATE INDEX IF NOT EXISTS idx_render_history_run
    ON render_history(run_id);

CREATE INDEX IF NOT EXISTS idx_render_history_target
    ON render_history(target_file);

-- Render metadata table
-- Stores key-value metadata about render operations
CREATE TABLE IF NOT EXISTS render_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// InitializeSchema initializes the database schema.
// It creates all tables if they don't exist.
func InitializeSchema(conn *Connection) error {
	if _, err := conn.Exec(Schema); err != nil {
		return err
	}
	return nil
}
