package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/config"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/library"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/storage"
)

var watchMode string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Refresh a want-list report whenever the library changes",
	Long: `Builds the report once, then watches the library directory and rebuilds
it after every change. Use --out to keep the report in a file.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		if watchMode != "" {
			a.cfg.Watch.Mode = watchMode
			if err := a.cfg.Validate(); err != nil {
				return err
			}
		}
		return a.watch(ctx)
	}),
}

func init() {
	watchCmd.Flags().StringVar(&watchMode, "mode", "", "Report to refresh: wantlist or detailed (default from config)")
}

// watch runs until ctx is cancelled.
func (a *app) watch(ctx context.Context) error {
	debounce, err := a.cfg.GetWatchDebounce()
	if err != nil {
		return err
	}
	minInterval, err := a.cfg.GetWatchMinInterval()
	if err != nil {
		return err
	}

	refresh := func(ctx context.Context) error {
		if a.cfg.Watch.Mode == config.WatchModeWantList {
			return a.runWantList(ctx, newEngine())
		}
		return a.runDetailed(ctx, newEngine())
	}

	if err := refresh(ctx); err != nil {
		a.logger.Warn("initial report failed", zap.Error(err))
	}

	w := library.NewWatcher(a.loader.Paths(), refresh, library.WatchOptions{
		Debounce:    debounce,
		MinInterval: minInterval,
		Logger:      a.logger,
	})
	a.logger.Info("watching library",
		zap.String("dir", a.loader.Dir()),
		zap.String("mode", a.cfg.Watch.Mode),
	)

	scheduler, err := a.backupScheduler()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.Run(gctx) })
	if scheduler != nil {
		g.Go(func() error { return scheduler.Run(gctx) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// backupScheduler returns nil when scheduled backups are disabled.
func (a *app) backupScheduler() (*storage.BackupScheduler, error) {
	interval, err := a.cfg.GetBackupInterval()
	if err != nil || interval == 0 {
		return nil, err
	}
	dir, err := a.cfg.BackupDir()
	if err != nil {
		return nil, err
	}

	a.logger.Info("scheduled backups enabled",
		zap.Duration("interval", interval),
		zap.Int("keep", a.cfg.Storage.BackupKeep),
	)
	return storage.NewBackupScheduler(a.db, storage.SchedulerConfig{
		Interval: interval,
		Backup:   storage.BackupOptions{Dir: dir},
		Keep:     a.cfg.Storage.BackupKeep,
		OnBackupComplete: func(path string, err error) {
			if err != nil {
				a.logger.Warn("scheduled backup failed", zap.Error(err))
				return
			}
			a.logger.Info("scheduled backup written", zap.String("path", path))
		},
	})
}
