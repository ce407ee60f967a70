package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const autoBackupPrefix = "auto_"

// SchedulerConfig holds configuration for the backup scheduler.
type SchedulerConfig struct {
	// Interval is how often to run backups.
	Interval time.Duration

	// Backup is the template for each backup; Name is always generated.
	Backup BackupOptions

	// Keep is the number of most recent scheduled backups retained in the
	// backup directory; 0 keeps every backup. Manual backups are never pruned.
	Keep int

	// StartImmediately runs a backup as soon as the scheduler starts.
	StartImmediately bool

	// OnBackupComplete is called after each backup attempt (success or failure).
	OnBackupComplete func(backupPath string, err error)
}

// BackupScheduler takes periodic backups of a database.
type BackupScheduler struct {
	db     *DB
	config SchedulerConfig

	mu           sync.Mutex
	lastBackup   time.Time
	lastError    error
	backupCount  int
	failureCount int
}

// SchedulerStatus contains information about the scheduler state.
type SchedulerStatus struct {
	LastBackup   time.Time
	LastError    error
	BackupCount  int
	FailureCount int
}

// NewBackupScheduler creates a backup scheduler.
func NewBackupScheduler(db *DB, config SchedulerConfig) (*BackupScheduler, error) {
	if config.Interval <= 0 {
		return nil, fmt.Errorf("backup interval must be positive: %s", config.Interval)
	}
	if config.Keep < 0 {
		return nil, fmt.Errorf("backup retention cannot be negative: %d", config.Keep)
	}
	return &BackupScheduler{db: db, config: config}, nil
}

// Run takes backups until ctx is cancelled.
func (s *BackupScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if s.config.StartImmediately {
		s.runBackup(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runBackup(ctx)
		}
	}
}

// runBackup takes one backup, prunes old ones and updates statistics.
func (s *BackupScheduler) runBackup(ctx context.Context) {
	opts := s.config.Backup
	// Nanoseconds keep names unique when backups run in quick succession.
	opts.Name = autoBackupPrefix + time.Now().Format("20060102_150405.000000000")

	path, err := s.db.Backup(ctx, opts)
	if err == nil && s.config.Keep > 0 {
		err = s.prune(filepath.Dir(path))
	}

	s.mu.Lock()
	s.lastBackup = time.Now()
	s.lastError = err
	if err != nil {
		s.failureCount++
	} else {
		s.backupCount++
	}
	s.mu.Unlock()

	if s.config.OnBackupComplete != nil {
		s.config.OnBackupComplete(path, err)
	}
}

// prune removes the oldest scheduled backups beyond the retention count.
func (s *BackupScheduler) prune(dir string) error {
	all, err := ListBackups(dir)
	if err != nil {
		return err
	}
	var backups []BackupInfo
	for _, b := range all {
		if strings.HasPrefix(b.Name, autoBackupPrefix) {
			backups = append(backups, b)
		}
	}
	for i := 0; i < len(backups)-s.config.Keep; i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to prune backup: %w", err)
		}
	}
	return nil
}

// Status returns the current scheduler statistics.
func (s *BackupScheduler) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SchedulerStatus{
		LastBackup:   s.lastBackup,
		LastError:    s.lastError,
		BackupCount:  s.backupCount,
		FailureCount: s.failureCount,
	}
}
