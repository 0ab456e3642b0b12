package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create tables
	schema := `
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS plot (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		plot_num TEXT NOT NULL DEFAULT '',
		stamp_num TEXT NOT NULL DEFAULT '',
		visible_id TEXT NOT NULL DEFAULT '',
		price REAL,
		sqft REAL,
		cent REAL,
		facing TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'available'
	);

	CREATE TABLE IF NOT EXISTS customer (
		id TEXT PRIMARY KEY,
		plot_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		mediator TEXT NOT NULL DEFAULT '',
		commission TEXT NOT NULL DEFAULT '',
		booking_amount TEXT NOT NULL DEFAULT '',
		closure_date TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT,
		FOREIGN KEY (plot_id) REFERENCES plot(id)
	);

	CREATE TABLE IF NOT EXISTS installment (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		amount TEXT NOT NULL DEFAULT '',
		received_date TEXT NOT NULL DEFAULT '',
		follow_up_date TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (customer_id) REFERENCES customer(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS mediator (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS enquiry (
		id TEXT PRIMARY KEY,
		plot_id TEXT,
		name TEXT NOT NULL,
		phone TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
