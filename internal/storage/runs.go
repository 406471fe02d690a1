package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hoanghai1803/csvpress/internal/models"
)

// CreateRun persists a finished import run, including the full result
// sequence as JSON.
func (s *Store) CreateRun(ctx context.Context, run *models.ImportRun) error {
	results, err := json.Marshal(run.Results)
	if err != nil {
		return fmt.Errorf("encoding run results: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO import_runs (id, source, filename, total, success, failed, duration_s, results_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Filename, run.Total, run.Success, run.Failed,
		run.Duration, string(results),
	)
	if err != nil {
		return fmt.Errorf("creating import run: %w", err)
	}
	return nil
}

// GetRun returns one run with its full result sequence. ErrNotFound is
// returned for an unknown ID.
func (s *Store) GetRun(ctx context.Context, id string) (*models.ImportRun, error) {
	var (
		run       models.ImportRun
		results   string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, filename, total, success, failed, duration_s, results_json, created_at
		 FROM import_runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.Source, &run.Filename, &run.Total, &run.Success,
		&run.Failed, &run.Duration, &results, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying import run %q: %w", id, err)
	}

	if err := json.Unmarshal([]byte(results), &run.Results); err != nil {
		return nil, fmt.Errorf("decoding run results: %w", err)
	}
	run.CreatedAt = parseTime(createdAt)
	return &run, nil
}

// ListRuns returns the most recent runs, newest first, without their result
// sequences (those can be large; fetch a single run for details).
func (s *Store) ListRuns(ctx context.Context, limit int) ([]models.ImportRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, filename, total, success, failed, duration_s, created_at
		 FROM import_runs
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying import runs: %w", err)
	}
	defer rows.Close()

	var runs []models.ImportRun
	for rows.Next() {
		var (
			run       models.ImportRun
			createdAt string
		)
		if err := rows.Scan(&run.ID, &run.Source, &run.Filename, &run.Total,
			&run.Success, &run.Failed, &run.Duration, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		run.CreatedAt = parseTime(createdAt)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run rows: %w", err)
	}
	return runs, nil
}
