package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/storage/models"
)

// RunRepository handles database operations for the reconciliation run history.
type RunRepository interface {
	// Create inserts a run.
	Create(ctx context.Context, run *models.Run) error

	// AddEntries inserts the element lines written by a run.
	AddEntries(ctx context.Context, entries []*models.RunEntry) error

	// Get retrieves a run by id, or nil when it does not exist.
	Get(ctx context.Context, id string) (*models.Run, error)

	// Entries retrieves the lines of a run in write order.
	Entries(ctx context.Context, runID string) ([]*models.RunEntry, error)

	// Recent retrieves the most recent runs, newest first. A negative
	// limit retrieves every run.
	Recent(ctx context.Context, limit int) ([]*models.Run, error)

	// Delete removes a run and its lines.
	Delete(ctx context.Context, id string) error
}

// runRepository is the concrete implementation of RunRepository.
type runRepository struct {
	db Querier
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db Querier) RunRepository {
	return &runRepository{db: db}
}

// Create inserts a run.
func (r *runRepository) Create(ctx context.Context, run *models.Run) error {
	query := `
		INSERT INTO runs (id, kind, needed, covered, surplus, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.Kind,
		run.Needed,
		run.Covered,
		run.Surplus,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// AddEntries inserts the element lines written by a run.
func (r *runRepository) AddEntries(ctx context.Context, entries []*models.RunEntry) error {
	query := `INSERT INTO run_entries (run_id, seq, section, line) VALUES (?, ?, ?, ?)`

	for _, e := range entries {
		if _, err := r.db.ExecContext(ctx, query, e.RunID, e.Seq, e.Section, e.Line); err != nil {
			return fmt.Errorf("failed to add run entry %d: %w", e.Seq, err)
		}
	}

	return nil
}

// Get retrieves a run by id.
func (r *runRepository) Get(ctx context.Context, id string) (*models.Run, error) {
	query := `SELECT id, kind, needed, covered, surplus, created_at FROM runs WHERE id = ?`

	run := &models.Run{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&run.Kind,
		&run.Needed,
		&run.Covered,
		&run.Surplus,
		&run.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return run, nil
}

// Entries retrieves the lines of a run in write order.
func (r *runRepository) Entries(ctx context.Context, runID string) ([]*models.RunEntry, error) {
	query := `SELECT run_id, seq, section, line FROM run_entries WHERE run_id = ? ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run entries: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []*models.RunEntry
	for rows.Next() {
		e := &models.RunEntry{}
		if err := rows.Scan(&e.RunID, &e.Seq, &e.Section, &e.Line); err != nil {
			return nil, fmt.Errorf("failed to scan run entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run entries: %w", err)
	}

	return entries, nil
}

// Recent retrieves the most recent runs, newest first.
func (r *runRepository) Recent(ctx context.Context, limit int) ([]*models.Run, error) {
	query := `
		SELECT id, kind, needed, covered, surplus, created_at
		FROM runs
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent runs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var runs []*models.Run
	for rows.Next() {
		run := &models.Run{}
		if err := rows.Scan(&run.ID, &run.Kind, &run.Needed, &run.Covered, &run.Surplus, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// Delete removes a run and its lines.
func (r *runRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM run_entries WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete entries of run %s: %w", id, err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete run %s: %w", id, err)
	}
	return nil
}
