package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/storage/models"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/storage/repository"
)

// RetentionPolicy defines which recorded runs survive a cleanup. A run is
// removed only when it is outside the KeepLatest newest runs and older than
// MaxAge.
type RetentionPolicy struct {
	// MaxAge protects runs younger than this. 0 protects nothing by age.
	MaxAge time.Duration

	// KeepLatest always keeps this many of the newest runs.
	KeepLatest int
}

// DefaultRetentionPolicy returns the default retention policy.
func DefaultRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{
		MaxAge:     90 * 24 * time.Hour, // 90 days
		KeepLatest: 20,
	}
}

// CleanupResult contains statistics about a cleanup operation.
type CleanupResult struct {
	TotalRuns     int
	RemovedRuns   int
	RetainedRuns  int
	OldestRun     time.Time
	NewestRun     time.Time
	DryRun        bool
	RemovedByKind map[string]int
}

// CleanupRuns removes recorded runs according to the retention policy.
// If dryRun is true, returns what would be deleted without actually deleting.
func (s *Service) CleanupRuns(ctx context.Context, policy RetentionPolicy, dryRun bool) (*CleanupResult, error) {
	if policy.MaxAge < 0 || policy.KeepLatest < 0 {
		return nil, fmt.Errorf("invalid retention policy: max age %s, keep %d", policy.MaxAge, policy.KeepLatest)
	}

	runs, err := s.runs.Recent(ctx, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to get runs: %w", err)
	}

	result := &CleanupResult{
		TotalRuns:     len(runs),
		DryRun:        dryRun,
		RemovedByKind: make(map[string]int),
	}
	if len(runs) == 0 {
		return result, nil
	}
	result.NewestRun = runs[0].CreatedAt
	result.OldestRun = runs[len(runs)-1].CreatedAt

	cutoff := time.Now().Add(-policy.MaxAge)
	var remove []*models.Run
	for i, run := range runs {
		if i < policy.KeepLatest || (policy.MaxAge > 0 && run.CreatedAt.After(cutoff)) {
			continue
		}
		remove = append(remove, run)
		result.RemovedByKind[run.Kind]++
	}
	result.RemovedRuns = len(remove)
	result.RetainedRuns = result.TotalRuns - result.RemovedRuns

	if dryRun || len(remove) == 0 {
		return result, nil
	}

	err = s.db.WithTransaction(ctx, func(q repository.Querier) error {
		runs := repository.NewRunRepository(q)
		for _, run := range remove {
			if err := runs.Delete(ctx, run.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to remove runs: %w", err)
	}
	return result, nil
}
