package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schemaStatements creates the directory tables. The DDL sticks to types and
// clauses understood by both PostgreSQL and SQLite.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS tuition_centres (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		location TEXT NOT NULL,
		whatsapp_number TEXT NOT NULL DEFAULT '',
		website TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tuition_centres_name ON tuition_centres (name, id)`,
	`CREATE TABLE IF NOT EXISTS levels (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS subjects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS offerings (
		id TEXT PRIMARY KEY,
		tuition_centre_id TEXT NOT NULL REFERENCES tuition_centres (id) ON DELETE CASCADE,
		level_id TEXT NOT NULL REFERENCES levels (id),
		subject_id TEXT NOT NULL REFERENCES subjects (id),
		UNIQUE (tuition_centre_id, level_id, subject_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_offerings_level_subject ON offerings (level_id, subject_id)`,
	`CREATE INDEX IF NOT EXISTS idx_offerings_subject ON offerings (subject_id)`,
	`CREATE TABLE IF NOT EXISTS tuition_centre_levels (
		tuition_centre_id TEXT NOT NULL REFERENCES tuition_centres (id) ON DELETE CASCADE,
		level_id TEXT NOT NULL REFERENCES levels (id),
		PRIMARY KEY (tuition_centre_id, level_id)
	)`,
	`CREATE TABLE IF NOT EXISTS tuition_centre_subjects (
		tuition_centre_id TEXT NOT NULL REFERENCES tuition_centres (id) ON DELETE CASCADE,
		subject_id TEXT NOT NULL REFERENCES subjects (id),
		PRIMARY KEY (tuition_centre_id, subject_id)
	)`,
}

// ApplySchema creates any missing tables and indexes
func ApplySchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
