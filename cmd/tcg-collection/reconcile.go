package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/collection"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/deckio"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/reconcile"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/storage/models"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/wantlist"
)

var (
	requireTags []string
	excludeTags []string
	showCovered bool
	noRecord    bool
)

var wantlistCmd = &cobra.Command{
	Use:   "wantlist",
	Short: "List every wanted card no owned copy covers",
	Long: `Flattens every collection and deck, flattens the owned boxes, and matches
them one to one, first by print code then by card id. The cards left over on
the wanted side are the want-list.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		return a.runWantList(ctx, newEngine())
	}),
}

var detailedCmd = &cobra.Command{
	Use:   "detailed",
	Short: "Show what each collection and deck is missing",
	Long: `Serves every collection and deck from one shared pool of owned cards, in
order: collections first (each unit's decks, then the collection's own cards),
then the top-level decks. Exact printings are matched first across every list,
then any printing of the same card.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		return a.runDetailed(ctx, newEngine())
	}),
}

var thirdPartyCmd = &cobra.Command{
	Use:   "thirdparty [file]",
	Short: "Check which of your missing cards a third party can supply",
	Long: `Reads a third party's card list (an element list, or a .ydk deck file) and
matches it against your want-list. Without a file argument the
library.third_party_file setting is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		path := a.cfg.Library.ThirdPartyFile
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return fmt.Errorf("no third-party list given")
		}
		return a.runThirdParty(ctx, newEngine(), path)
	}),
}

func init() {
	for _, cmd := range []*cobra.Command{wantlistCmd, detailedCmd, thirdPartyCmd} {
		cmd.Flags().BoolVar(&noRecord, "no-record", false, "Do not store the run in the history")
	}
	detailedCmd.Flags().StringSliceVar(&requireTags, "require", nil, "Only match wanted cards whose annotations contain every tag")
	detailedCmd.Flags().StringSliceVar(&excludeTags, "exclude", nil, "Never match wanted cards whose annotations contain any tag")
	detailedCmd.Flags().BoolVar(&showCovered, "show-covered", false, "List covered cards as comments")
}

// withApp opens the app for the command and closes it afterwards.
func withApp(run func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(ctx, a, args)
	}
}

func newEngine() *wantlist.Engine {
	return wantlist.New(logger, wantlist.Options{
		Filter: reconcile.Filter{Required: requireTags, Excluded: excludeTags},
	})
}

func (a *app) loadLibrary(ctx context.Context) (*collection.Registry, *collection.Owned, error) {
	reg, err := a.loader.LoadRegistry(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load library: %w", err)
	}
	owned, err := a.loader.LoadOwned(ctx)
	if err != nil {
		return nil, nil, err
	}
	return reg, owned, nil
}

func (a *app) runWantList(ctx context.Context, engine *wantlist.Engine) error {
	reg, owned, err := a.loadLibrary(ctx)
	if err != nil {
		return err
	}

	wl := engine.CreateWantList(reg, owned)
	if err := a.writeReport("wantlist.txt", func(w io.Writer) error {
		return deckio.WriteWantList(w, wl)
	}); err != nil {
		return err
	}

	return a.record(ctx, wl.Summary(), entriesOf("needed", wl.Needed))
}

func (a *app) runDetailed(ctx context.Context, engine *wantlist.Engine) error {
	reg, owned, err := a.loadLibrary(ctx)
	if err != nil {
		return err
	}

	d := engine.CreateDetailedWantList(reg, owned)
	if err := a.writeReport("detailed.txt", func(w io.Writer) error {
		return deckio.WriteDetailedWantList(w, d, showCovered)
	}); err != nil {
		return err
	}

	var entries []*models.RunEntry
	for _, sec := range d.Sections {
		entries = append(entries, entriesOf(deckio.SectionTitle(sec), sec.Shortfall())...)
	}
	return a.record(ctx, d.Summary(), entries)
}

func (a *app) runThirdParty(ctx context.Context, engine *wantlist.Engine, path string) error {
	reg, owned, err := a.loadLibrary(ctx)
	if err != nil {
		return err
	}
	offer, err := a.loader.LoadThirdParty(ctx, path)
	if err != nil {
		return err
	}

	wl := engine.CreateWantList(reg, owned)
	res := engine.CrossCheckThirdParty(offer, wl.Needed)
	if err := a.writeReport("thirdparty.txt", func(w io.Writer) error {
		return deckio.WriteThirdParty(w, res)
	}); err != nil {
		return err
	}

	entries := entriesOf("obtainable", res.Obtainable)
	entries = append(entries, entriesOf("still missing", res.StillMissing)...)
	return a.record(ctx, res.Summary(), entries)
}

// record stores the run in the history unless --no-record is set.
func (a *app) record(ctx context.Context, s wantlist.Summary, entries []*models.RunEntry) error {
	if noRecord {
		return nil
	}

	run := &models.Run{
		Kind:    s.Kind,
		Needed:  s.Needed,
		Covered: s.Covered,
		Surplus: s.Surplus,
	}
	if err := a.store.RecordRun(ctx, run, entries); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	a.logger.Info("run recorded",
		zap.String("id", run.ID),
		zap.String("kind", run.Kind),
		zap.Int("needed", run.Needed),
		zap.Int("covered", run.Covered),
		zap.Int("surplus", run.Surplus),
	)
	return nil
}

func entriesOf(section string, list []*collection.Element) []*models.RunEntry {
	entries := make([]*models.RunEntry, 0, len(list))
	for _, e := range list {
		entries = append(entries, &models.RunEntry{Section: section, Line: e.String()})
	}
	return entries
}
