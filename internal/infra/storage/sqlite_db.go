package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// InitSQLite initializes the local SQLite database and creates the schemas
// for archiving completed runs, round records and the session event stream.
func InitSQLite(dbPath string) (*sql.DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := createSchemas(db); err != nil {
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}

	return db, nil
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			strategy_a TEXT NOT NULL,
			strategy_b TEXT NOT NULL,
			rounds INTEGER NOT NULL,
			initial_a INTEGER NOT NULL,
			initial_b INTEGER NOT NULL,
			final_a INTEGER NOT NULL,
			final_b INTEGER NOT NULL,
			total_gain INTEGER NOT NULL,
			finished_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS round_records (
			run_id TEXT NOT NULL,
			round INTEGER NOT NULL,
			move_a TEXT NOT NULL,
			move_b TEXT NOT NULL,
			raw_gain_a REAL NOT NULL,
			raw_gain_b REAL NOT NULL,
			net_gain_a INTEGER NOT NULL,
			net_gain_b INTEGER NOT NULL,
			spillover_to_b INTEGER NOT NULL DEFAULT 0,
			volume_a INTEGER NOT NULL,
			volume_b INTEGER NOT NULL,
			PRIMARY KEY (run_id, round),
			FOREIGN KEY (run_id) REFERENCES runs(run_id)
		);`,
		`CREATE TABLE IF NOT EXISTS sim_events (
			id TEXT PRIMARY KEY,
			timestamp DATETIME NOT NULL,
			event_type TEXT NOT NULL,
			run_id TEXT NOT NULL,
			round INTEGER NOT NULL DEFAULT 0,
			payload TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_round_records_run_id ON round_records(run_id);`,
		`CREATE INDEX IF NOT EXISTS idx_sim_events_run_id ON sim_events(run_id);`,
		`CREATE INDEX IF NOT EXISTS idx_sim_events_type ON sim_events(event_type);`,
	}

	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
