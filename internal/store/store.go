// Package store provides optional PostgreSQL persistence for run history
// and extracted job postings. The monitor works without it; the pipeline
// treats a nil store as "persistence disabled".
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/jobscout/internal/extract"
)

// Store wraps a PostgreSQL connection pool
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// CreateRun records the start of a monitoring cycle
func (s *Store) CreateRun(ctx context.Context, runID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO monitor_runs (id, status) VALUES ($1, 'running')`,
		runID,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun marks a cycle as finished with its counters
func (s *Store) CompleteRun(ctx context.Context, runID uuid.UUID, status string, emailCount, linkCount, jobCount int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE monitor_runs
		 SET status = $1, email_count = $2, link_count = $3, job_count = $4, completed_at = NOW()
		 WHERE id = $5`,
		status, emailCount, linkCount, jobCount, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// SavePosting stores one extracted posting for a run. Re-extracting the same
// application URL in a later run updates the stored record in place.
func (s *Store) SavePosting(ctx context.Context, runID uuid.UUID, posting extract.JobPosting) error {
	requirements, err := json.Marshal(posting.Requirements)
	if err != nil {
		return fmt.Errorf("failed to marshal requirements: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO job_postings
		   (run_id, title, company, location, description, requirements, salary, application_deadline, application_url, source)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (application_url) DO UPDATE SET
		   run_id = $1, title = $2, company = $3, location = $4, description = $5,
		   requirements = $6, salary = $7, application_deadline = $8, source = $10, updated_at = NOW()`,
		runID, posting.Title, posting.Company, posting.Location, posting.Description,
		requirements, posting.Salary, posting.ApplicationDeadline, posting.ApplicationURL, posting.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to save posting %s: %w", posting.ApplicationURL, err)
	}
	return nil
}

// HasPosting reports whether an application URL was already stored by any run
func (s *Store) HasPosting(ctx context.Context, applicationURL string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM job_postings WHERE application_url = $1)`,
		applicationURL,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check posting: %w", err)
	}
	return exists, nil
}

// ListRecentPostings retrieves the most recently stored postings
func (s *Store) ListRecentPostings(ctx context.Context, limit int) ([]extract.JobPosting, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT title, company, location, description, requirements, salary, application_deadline, application_url, source
		 FROM job_postings ORDER BY updated_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list postings: %w", err)
	}
	defer rows.Close()

	var postings []extract.JobPosting
	for rows.Next() {
		var p extract.JobPosting
		var requirements []byte
		if err := rows.Scan(&p.Title, &p.Company, &p.Location, &p.Description, &requirements,
			&p.Salary, &p.ApplicationDeadline, &p.ApplicationURL, &p.Source); err != nil {
			return nil, fmt.Errorf("failed to scan posting: %w", err)
		}
		if len(requirements) > 0 {
			if err := json.Unmarshal(requirements, &p.Requirements); err != nil {
				return nil, fmt.Errorf("failed to unmarshal requirements: %w", err)
			}
		}
		postings = append(postings, p)
	}
	return postings, nil
}
