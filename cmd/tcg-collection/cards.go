package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	searchLocale string
	searchLimit  int
)

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Manage the card catalog",
}

var cardsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import card records from a YAML file",
	Long: `Upserts every card of a YAML file into the catalog:

  cards:
    - global_id: "4007"
      pass_code: "89631139"
      print_code: LOB-EN001
      names: {en: Blue-Eyes White Dragon}`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer func() { _ = f.Close() }()

		res, err := a.catalog.Import(ctx, f)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d cards (%d skipped without identity)\n", res.Imported, res.Skipped)
		return nil
	}),
}

var cardsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search card names",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		results, err := a.catalog.Search(ctx, args[0], searchLocale, searchLimit)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No matching cards.")
			return nil
		}
		for _, r := range results {
			fmt.Printf("  %-12s %-10s %s\n", r.Card.PrintCode, r.Card.PassCode, r.Name)
		}
		return nil
	}),
}

func init() {
	cardsSearchCmd.Flags().StringVar(&searchLocale, "locale", "en", "Name locale")
	cardsSearchCmd.Flags().IntVar(&searchLimit, "limit", 20, "Maximum results (0 = all)")

	cardsCmd.AddCommand(cardsImportCmd)
	cardsCmd.AddCommand(cardsSearchCmd)
}
