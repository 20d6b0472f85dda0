package database

import (
	"context"
	"fmt"
)

//nolint:gochecknoglobals
var schema = map[string][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT    PRIMARY KEY,
			created_at    INTEGER NOT NULL,
			username      TEXT    UNIQUE NOT NULL,
			password_hash BLOB    NOT NULL,
			is_admin      INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			seq             INTEGER PRIMARY KEY AUTOINCREMENT,
			id              TEXT    UNIQUE NOT NULL,
			created_at      INTEGER NOT NULL,
			last_updated_at INTEGER NOT NULL,
			title           TEXT    NOT NULL CHECK (title <> ''),
			description     TEXT    NOT NULL DEFAULT '',
			status          TEXT    NOT NULL CHECK (status IN ('TODO', 'IN_PROGRESS', 'DONE', 'ARCHIVED')),
			owner_id        TEXT    NOT NULL REFERENCES users (id)
		)`,
		`CREATE INDEX IF NOT EXISTS tasks_owner_id_idx ON tasks (owner_id, seq)`,
	},
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT    PRIMARY KEY,
			created_at    BIGINT  NOT NULL,
			username      TEXT    UNIQUE NOT NULL,
			password_hash BYTEA   NOT NULL,
			is_admin      BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			seq             BIGINT  GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			id              TEXT    UNIQUE NOT NULL,
			created_at      BIGINT  NOT NULL,
			last_updated_at BIGINT  NOT NULL,
			title           TEXT    NOT NULL CHECK (title <> ''),
			description     TEXT    NOT NULL DEFAULT '',
			status          TEXT    NOT NULL CHECK (status IN ('TODO', 'IN_PROGRESS', 'DONE', 'ARCHIVED')),
			owner_id        TEXT    NOT NULL REFERENCES users (id)
		)`,
		`CREATE INDEX IF NOT EXISTS tasks_owner_id_idx ON tasks (owner_id, seq)`,
	},
}

// Migrate creates the users and tasks tables if they do not exist.
// Timestamps are stored as Unix milliseconds.
func (db *DB) Migrate(ctx context.Context) error {
	unlock := db.LockWrites()
	defer unlock()

	for _, stmt := range schema[db.driver] {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	return nil
}
