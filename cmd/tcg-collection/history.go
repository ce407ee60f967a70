package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/export"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/storage"
)

var (
	historyLimit int
	pruneAge     time.Duration
	pruneKeep    int
	pruneDryRun  bool

	exportFormat    string
	exportFile      string
	exportOverwrite bool
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recorded runs, or show the lines of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		if len(args) == 1 {
			return a.showRun(ctx, args[0])
		}
		return a.listRuns(ctx)
	}),
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old runs from the history",
	Long: `Removes runs that are older than --older-than and not among the --keep
newest runs.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		policy := storage.RetentionPolicy{MaxAge: pruneAge, KeepLatest: pruneKeep}
		result, err := a.store.CleanupRuns(ctx, policy, pruneDryRun)
		if err != nil {
			return err
		}

		verb := "Removed"
		if result.DryRun {
			verb = "Would remove"
		}
		fmt.Printf("%s %d of %d runs (%d retained)\n", verb, result.RemovedRuns, result.TotalRuns, result.RetainedRuns)
		kinds := make([]string, 0, len(result.RemovedByKind))
		for kind := range result.RemovedByKind {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Printf("  %-10s %d\n", kind, result.RemovedByKind[kind])
		}

		a.logger.Debug("history pruned",
			zap.Duration("older_than", pruneAge),
			zap.Int("keep", pruneKeep),
			zap.Int("removed", result.RemovedRuns),
			zap.Bool("dry_run", result.DryRun),
		)
		return nil
	}),
}

var historyExportCmd = &cobra.Command{
	Use:   "export [run-id]",
	Short: "Export the run list, or the lines of one run, as CSV or JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}

		var data any
		if len(args) == 1 {
			run, err := a.store.Runs().Get(ctx, args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("no run with id %s", args[0])
			}
			entries, err := a.store.Runs().Entries(ctx, run.ID)
			if err != nil {
				return err
			}
			data = export.EntryRows(entries)
		} else {
			runs, err := a.store.Runs().Recent(ctx, -1)
			if err != nil {
				return err
			}
			data = export.RunRows(runs)
		}

		e := export.NewExporter(export.Options{Format: format, PrettyJSON: true})
		if exportFile == "" {
			return e.Export(os.Stdout, data)
		}
		if err := e.ExportFile(exportFile, exportOverwrite, data); err != nil {
			return err
		}
		a.logger.Info("history exported", zap.String("path", exportFile), zap.String("format", string(format)))
		return nil
	}),
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of runs to list")

	defaults := storage.DefaultRetentionPolicy()
	historyPruneCmd.Flags().DurationVar(&pruneAge, "older-than", defaults.MaxAge, "Only remove runs older than this (0 ignores age)")
	historyPruneCmd.Flags().IntVar(&pruneKeep, "keep", defaults.KeepLatest, "Always keep this many of the newest runs")
	historyPruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "Report what would be removed without removing it")
	historyCmd.AddCommand(historyPruneCmd)

	historyExportCmd.Flags().StringVar(&exportFormat, "format", string(export.FormatCSV), "Export format: csv or json")
	historyExportCmd.Flags().StringVar(&exportFile, "file", "", "Write to this file instead of stdout")
	historyExportCmd.Flags().BoolVar(&exportOverwrite, "overwrite", false, "Replace an existing export file")
	historyCmd.AddCommand(historyExportCmd)
}

func (a *app) listRuns(ctx context.Context) error {
	runs, err := a.store.Runs().Recent(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Println("Recent Runs")
	fmt.Println("===========")
	for _, r := range runs {
		fmt.Printf("  %s  %-10s  %s  needed %d, covered %d, surplus %d\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.Kind, r.ID, r.Needed, r.Covered, r.Surplus)
	}
	return nil
}

func (a *app) showRun(ctx context.Context, id string) error {
	run, err := a.store.Runs().Get(ctx, id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("no run with id %s", id)
	}
	entries, err := a.store.Runs().Entries(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("# %s run %s at %s\n", run.Kind, run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"))
	section := ""
	for _, e := range entries {
		if e.Section != section {
			section = e.Section
			fmt.Printf("# %s\n", section)
		}
		fmt.Println(e.Line)
	}
	return nil
}
