// Command tcg-collection reconciles a trading card collection against the
// decks and themed collections its owner wants to complete.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/config"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/version"
)

var (
	// Global flags
	configPath string
	verbose    bool
	outDir     string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tcg-collection",
	Short: "Trading card collection manager",
	Long: `tcg-collection compares the cards you own with the decks and themed
collections you want to build, and tells you what is still missing.

The library directory holds:
  owned.yaml            the boxes of cards you own
  decks/*.ydk           deck files
  collections/*.yaml    themed collections linking decks by name`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if cmd.Flags().Changed("out") {
			cfg.Output.Dir = outDir
		}

		zapConfig := zap.NewProductionConfig()
		if verbose || cfg.App.DebugMode {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = logger.With(zap.String("version", version.GetVersion()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.Version = version.GetVersion()
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.tcg-collection/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&outDir, "out", "", "Write reports to this directory instead of stdout")

	rootCmd.AddCommand(wantlistCmd)
	rootCmd.AddCommand(detailedCmd)
	rootCmd.AddCommand(thirdPartyCmd)
	rootCmd.AddCommand(cardsCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(serviceCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
