package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/catalog"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/config"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/library"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/storage"
)

// app wires the services a command needs from the loaded config.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *storage.DB
	store   *storage.Service
	catalog *catalog.Service
	loader  *library.Loader
}

// openApp opens the database and builds the catalog and library loader.
func openApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	store := storage.NewService(db)

	cat, err := catalog.NewService(store.Cards(), &catalog.Config{
		CacheSize:     cfg.Catalog.CacheSize,
		CreateUnknown: cfg.Catalog.CreateUnknown,
	}, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	libDir, err := cfg.LibraryDir()
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		store:   store,
		catalog: cat,
		loader: library.NewLoader(library.Options{
			Dir:       libDir,
			OwnedFile: cfg.Library.OwnedFile,
			Resolve:   cat.Resolver(ctx),
			Logger:    logger,
		}),
	}, nil
}

func openDB(cfg *config.Config) (*storage.DB, error) {
	path, err := cfg.DBPath()
	if err != nil {
		return nil, err
	}
	dbConfig := storage.DefaultConfig(path)
	dbConfig.AutoMigrate = cfg.Storage.AutoMigrate

	db, err := storage.Open(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", zap.Error(err))
	}
}

// writeReport writes a report to <output dir>/<name>, or to stdout when no
// output directory is configured.
func (a *app) writeReport(name string, write func(io.Writer) error) error {
	if a.cfg.Output.Dir == "" {
		return write(os.Stdout)
	}

	if err := os.MkdirAll(a.cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(a.cfg.Output.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	a.logger.Info("report written", zap.String("path", path))
	return nil
}
