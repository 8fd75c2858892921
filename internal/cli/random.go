package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/emalfdraw/internal/ideas"
)

func init() {
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Draw random ideas",
		Long:  "Draw one or more ideas. Each draw is an independent uniform sample, so repeats are possible.",
		RunE:  runRandom,
	}

	cmd.Flags().IntP("count", "c", 1, "Number of independent draws")

	RootCmd.AddCommand(cmd)
}

func runRandom(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	if count < 1 {
		count = 1
	}

	s, err := openCatalog()
	if err != nil {
		return err
	}
	defer s.Close()

	draws := make([]*ideas.Idea, count)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(4)
	for i := range count {
		g.Go(func() error {
			idea, err := s.catalog.Random(ctx)
			if err != nil {
				return err
			}
			draws[i] = idea
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("random: %w", err)
	}

	if formatFlag == "text" {
		for _, idea := range draws {
			printIdea(idea)
		}
		return nil
	}
	if count == 1 {
		printJSON(draws[0])
		return nil
	}
	printJSON(draws)
	return nil
}
