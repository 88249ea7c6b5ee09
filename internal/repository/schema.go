package repository

import (
	"context"
	"fmt"
)

// Portable DDL: TEXT ids and RFC 3339 TEXT timestamps work identically on
// Postgres and sqlite.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		industry      TEXT,
		status        TEXT NOT NULL DEFAULT 'active',
		contact_email TEXT,
		contact_phone TEXT,
		description   TEXT,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS engagements (
		id               TEXT PRIMARY KEY,
		customer_id      TEXT NOT NULL,
		name             TEXT NOT NULL,
		status           TEXT NOT NULL DEFAULT 'active',
		ryg_status       TEXT NOT NULL DEFAULT 'GREEN',
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL,
		last_analyzed_at TEXT,
		sentiment_class  TEXT,
		sentiment_score  REAL,
		risk_factors     TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id            TEXT PRIMARY KEY,
		engagement_id TEXT NOT NULL,
		filename      TEXT NOT NULL,
		original_name TEXT NOT NULL,
		file_type     TEXT NOT NULL DEFAULT 'other',
		mime_class    TEXT NOT NULL,
		size_bytes    INTEGER NOT NULL,
		file_path     TEXT NOT NULL,
		uploaded_by   TEXT NOT NULL,
		uploaded_at   TEXT NOT NULL,
		processed_at  TEXT,
		text_content  TEXT,
		sentiment     TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS emails (
		id              TEXT PRIMARY KEY,
		engagement_id   TEXT NOT NULL,
		subject         TEXT NOT NULL,
		sender          TEXT NOT NULL,
		content         TEXT NOT NULL,
		received_at     TEXT NOT NULL,
		sentiment_class TEXT,
		sentiment_score REAL
	)`,
	`CREATE TABLE IF NOT EXISTS action_items (
		id                TEXT PRIMARY KEY,
		engagement_id     TEXT NOT NULL,
		description       TEXT NOT NULL,
		priority          TEXT NOT NULL,
		responsible_party TEXT,
		due_date          TEXT,
		status            TEXT NOT NULL,
		dependencies      TEXT,
		risk_level        TEXT NOT NULL,
		source            TEXT NOT NULL DEFAULT 'ai',
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_customers_name ON customers (name)`,
	`CREATE INDEX IF NOT EXISTS idx_engagements_customer ON engagements (customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_engagement ON documents (engagement_id)`,
	`CREATE INDEX IF NOT EXISTS idx_emails_engagement ON emails (engagement_id)`,
	`CREATE INDEX IF NOT EXISTS idx_action_items_engagement ON action_items (engagement_id)`,
}

// EnsureSchema creates the tables and indexes if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	s.logger.Debug("schema ensured", "statements", len(schemaStatements))
	return nil
}
