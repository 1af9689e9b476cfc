package db

import (
	"fmt"
	"log"
)

// schema is applied on every startup; all statements are idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS videos (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		slug TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		thumbnail TEXT NOT NULL DEFAULT '',
		duration TEXT NOT NULL DEFAULT '',
		video_url TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '',
		views INTEGER NOT NULL DEFAULT 0,
		likes INTEGER NOT NULL DEFAULT 0,
		featured BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_videos_title ON videos (title)`,
	`CREATE INDEX IF NOT EXISTS idx_videos_slug ON videos (slug)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		slug TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		video_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS models (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		slug TEXT NOT NULL,
		bio TEXT NOT NULL DEFAULT '',
		total_views INTEGER NOT NULL DEFAULT 0,
		video_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS video_categories (
		video_id UUID NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
		category_id UUID NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		PRIMARY KEY (video_id, category_id)
	)`,
	`CREATE TABLE IF NOT EXISTS video_models (
		video_id UUID NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
		model_id UUID NOT NULL REFERENCES models(id) ON DELETE CASCADE,
		PRIMARY KEY (video_id, model_id)
	)`,
	`CREATE TABLE IF NOT EXISTS scrape_configs (
		id UUID PRIMARY KEY,
		enabled BOOLEAN NOT NULL DEFAULT FALSE,
		interval_minutes INTEGER NOT NULL,
		job_type TEXT NOT NULL,
		start_page INTEGER NOT NULL DEFAULT 1,
		end_page INTEGER NOT NULL DEFAULT 1,
		keyword TEXT NOT NULL DEFAULT '',
		update_existing BOOLEAN NOT NULL DEFAULT FALSE,
		last_run TIMESTAMPTZ,
		next_run TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS collection_logs (
		id UUID PRIMARY KEY,
		job_type TEXT NOT NULL,
		keyword TEXT NOT NULL DEFAULT '',
		total_pages INTEGER NOT NULL DEFAULT 0,
		total INTEGER NOT NULL DEFAULT 0,
		processed INTEGER NOT NULL DEFAULT 0,
		created INTEGER NOT NULL DEFAULT 0,
		updated INTEGER NOT NULL DEFAULT 0,
		errors INTEGER NOT NULL DEFAULT 0,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_collection_logs_started ON collection_logs (started_at DESC)`,
}

func Migrate(database *DB) error {
	for i, stmt := range schema {
		if _, err := database.Exec(stmt); err != nil {
			return fmt.Errorf("migration statement %d failed: %w", i, err)
		}
	}
	log.Printf("db: schema up to date (%d statements)", len(schema))
	return nil
}
