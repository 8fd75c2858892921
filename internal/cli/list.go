package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ideas, newest first",
		RunE:  runList,
	}

	cmd.Flags().IntP("limit", "l", 0, "Max results (0 for all)")
	cmd.Flags().Bool("submitted", false, "Only show user-submitted ideas")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	submitted, _ := cmd.Flags().GetBool("submitted")

	s, err := openCatalog()
	if err != nil {
		return err
	}
	defer s.Close()

	list, err := s.catalog.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	if submitted {
		filtered := list[:0]
		for _, idea := range list {
			if idea.UserSubmitted {
				filtered = append(filtered, idea)
			}
		}
		list = filtered
	}

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	if formatFlag == "text" {
		for i := range list {
			printIdea(&list[i])
		}
		return nil
	}
	printJSON(list)
	return nil
}
