package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/emalfdraw/internal/ideas"
)

func init() {
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Seed the default ideas into an empty catalog",
		Long:  "Insert the default ideas when the catalog is empty. Running it again is a no-op.",
		RunE:  runSeed,
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show catalog size",
		RunE:  runStats,
	}

	RootCmd.AddCommand(seed, stats)
}

func runSeed(cmd *cobra.Command, args []string) error {
	s, err := openCatalog()
	if err != nil {
		return err
	}
	defer s.Close()

	texts, err := s.cfg.Catalog.LoadDefaults()
	if err != nil {
		return fmt.Errorf("load defaults: %w", err)
	}
	if texts == nil {
		texts = ideas.Defaults()
	}

	n, err := s.catalog.SeedDefaults(cmd.Context(), texts)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	if formatFlag == "text" {
		fmt.Printf("seeded %d ideas\n", n)
		return nil
	}
	printJSON(map[string]int{"seeded": n})
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	s, err := openCatalog()
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.catalog.Count(cmd.Context())
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	if formatFlag == "text" {
		fmt.Printf("%d ideas (%s store)\n", n, s.cfg.Catalog.Store)
		return nil
	}
	printJSON(map[string]any{"ideas_count": n, "store": s.cfg.Catalog.Store})
	return nil
}
