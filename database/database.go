package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
)

// Connect opens the Postgres pool and verifies the connection
func Connect(databaseURL string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}

	log.Println("Successfully connected to database")
	return db, nil
}

// CreateTables creates the necessary tables if they don't exist
func CreateTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS monitors (
			id SERIAL PRIMARY KEY,
			url TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			region VARCHAR(10) NOT NULL DEFAULT 'us',
			css_hint TEXT,
			node_index INTEGER,
			email TEXT,
			chat_webhook TEXT,
			last_checked_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			is_active BOOLEAN DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id SERIAL PRIMARY KEY,
			monitor_id INTEGER REFERENCES monitors(id) ON DELETE CASCADE,
			html TEXT,
			text_content TEXT,
			price_json JSONB,
			html_hash VARCHAR(64),
			text_hash VARCHAR(64),
			pricing_hash VARCHAR(64),
			visual_hash VARCHAR(64),
			screenshot_sha256 VARCHAR(64),
			screenshot_path TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS changes (
			id SERIAL PRIMARY KEY,
			monitor_id INTEGER REFERENCES monitors(id) ON DELETE CASCADE,
			prev_snapshot_id INTEGER REFERENCES snapshots(id),
			new_snapshot_id INTEGER NOT NULL REFERENCES snapshots(id),
			summary TEXT,
			diff JSONB,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_snapshots_monitor_created ON snapshots (monitor_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_changes_monitor ON changes (monitor_id, created_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %v", err)
		}
	}

	return nil
}
