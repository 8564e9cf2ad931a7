package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens (or creates) a SQLite database at the given path and ensures
// all required tables exist. Pass ":memory:" for an in-memory database.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			duration_ms INTEGER NOT NULL,
			statement_file TEXT NOT NULL,
			settlement_file TEXT NOT NULL,
			statement_hash TEXT NOT NULL,
			settlement_hash TEXT NOT NULL,
			statement_rows INTEGER NOT NULL,
			settlement_rows INTEGER NOT NULL,
			statement_eligible INTEGER NOT NULL,
			settlement_eligible INTEGER NOT NULL,
			row_errors INTEGER NOT NULL,
			matched_both INTEGER NOT NULL,
			settlement_only INTEGER NOT NULL,
			statement_only INTEGER NOT NULL,
			total_variance TEXT NOT NULL,
			warning_count INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_statement_hash ON runs(statement_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_settlement_hash ON runs(settlement_hash)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}

	return nil
}
