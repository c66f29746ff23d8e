package store

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS monitor_runs (
	id UUID PRIMARY KEY,
	status TEXT NOT NULL,
	email_count INT NOT NULL DEFAULT 0,
	link_count INT NOT NULL DEFAULT 0,
	job_count INT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS job_postings (
	id BIGSERIAL PRIMARY KEY,
	run_id UUID REFERENCES monitor_runs(id) ON DELETE SET NULL,
	title TEXT NOT NULL,
	company TEXT NOT NULL,
	location TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	requirements JSONB NOT NULL DEFAULT '[]',
	salary TEXT,
	application_deadline TEXT,
	application_url TEXT NOT NULL UNIQUE,
	source TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// EnsureSchema creates the tables if they do not exist yet
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
