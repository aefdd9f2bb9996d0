// Package database manages the Postgres connection and schema.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// NewPostgresConnection opens and verifies a Postgres connection pool.
func NewPostgresConnection(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Migrate creates the schema if it does not exist yet.
func Migrate(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id    BIGSERIAL PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS groups (
		group_id    BIGSERIAL PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT,
		group_type  TEXT NOT NULL DEFAULT 'general',
		created_by  BIGINT NOT NULL REFERENCES users(user_id),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS user_groups (
		id        BIGSERIAL PRIMARY KEY,
		user_id   BIGINT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		group_id  BIGINT NOT NULL REFERENCES groups(group_id) ON DELETE CASCADE,
		role      TEXT NOT NULL DEFAULT 'member',
		joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, group_id)
	)`,
	`CREATE TABLE IF NOT EXISTS expenses (
		expense_id   BIGSERIAL PRIMARY KEY,
		group_id     BIGINT NOT NULL REFERENCES groups(group_id) ON DELETE CASCADE,
		payer_id     BIGINT NOT NULL REFERENCES users(user_id),
		amount       NUMERIC(12,2) NOT NULL,
		currency     TEXT NOT NULL DEFAULT 'USD',
		description  TEXT NOT NULL,
		expense_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		type         TEXT NOT NULL DEFAULT 'general'
	)`,
	`CREATE TABLE IF NOT EXISTS expense_shares (
		id           BIGSERIAL PRIMARY KEY,
		expense_id   BIGINT NOT NULL REFERENCES expenses(expense_id) ON DELETE CASCADE,
		user_id      BIGINT NOT NULL REFERENCES users(user_id),
		share_amount NUMERIC(12,2) NOT NULL,
		UNIQUE (expense_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS wallet_passes (
		id         BIGSERIAL PRIMARY KEY,
		group_id   BIGINT NOT NULL REFERENCES groups(group_id) ON DELETE CASCADE,
		user_id    BIGINT NOT NULL REFERENCES users(user_id),
		object_id  TEXT NOT NULL,
		save_url   TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (group_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_group ON expenses(group_id)`,
	`CREATE INDEX IF NOT EXISTS idx_expense_shares_expense ON expense_shares(expense_id)`,
	`CREATE INDEX IF NOT EXISTS idx_user_groups_group ON user_groups(group_id)`,
}
