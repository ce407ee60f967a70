package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/storage/models"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/storage/repository"
)

// Service provides the repositories and the multi-table operations over them.
type Service struct {
	db    *DB
	cards repository.CardRepository
	runs  repository.RunRepository
}

// NewService creates a new storage service.
func NewService(db *DB) *Service {
	return &Service{
		db:    db,
		cards: repository.NewCardRepository(db.Conn()),
		runs:  repository.NewRunRepository(db.Conn()),
	}
}

// Cards returns the card catalog repository.
func (s *Service) Cards() repository.CardRepository {
	return s.cards
}

// Runs returns the run history repository.
func (s *Service) Runs() repository.RunRepository {
	return s.runs
}

// RecordRun stores a run and its lines atomically. The run gets a fresh id
// and timestamp when they are unset.
func (s *Service) RecordRun(ctx context.Context, run *models.Run, entries []*models.RunEntry) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	return s.db.WithTransaction(ctx, func(q repository.Querier) error {
		runs := repository.NewRunRepository(q)
		if err := runs.Create(ctx, run); err != nil {
			return err
		}

		for i, e := range entries {
			e.RunID = run.ID
			e.Seq = i
		}
		if err := runs.AddEntries(ctx, entries); err != nil {
			return fmt.Errorf("failed to store lines of run %s: %w", run.ID, err)
		}
		return nil
	})
}
