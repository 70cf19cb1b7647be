package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StartRun records the start of a sync run and returns it with a fresh ID.
func (s *Store) StartRun(generator string, dryRun bool) (*Run, error) {
	r := &Run{
		ID:        uuid.NewString(),
		Generator: generator,
		DryRun:    dryRun,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(
		"INSERT INTO runs (id, generator, dry_run, started_at) VALUES (?, ?, ?, ?)",
		r.ID, r.Generator, r.DryRun, r.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}
	return r, nil
}

// FinishRun stores r's counters and stamps its finish time.
func (s *Store) FinishRun(r *Run) error {
	now := time.Now().UTC()
	r.FinishedAt = &now
	_, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, files = ?, updated = ?, skipped = ?, failed = ?, comments = ?
		 WHERE id = ?`,
		now, r.Files, r.Updated, r.Skipped, r.Failed, r.Comments, r.ID,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", r.ID, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(limit int) ([]*Run, error) {
	rows, err := s.db.Query(
		`SELECT id, generator, dry_run, started_at, finished_at, files, updated, skipped, failed, comments
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent runs: %w", err)
	}
	defer rows.Close()
	var runs []*Run
	for rows.Next() {
		r := &Run{}
		if err := rows.Scan(&r.ID, &r.Generator, &r.DryRun, &r.StartedAt, &r.FinishedAt,
			&r.Files, &r.Updated, &r.Skipped, &r.Failed, &r.Comments); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
