package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "submit [text]",
		Short: "Submit a new idea",
		Long:  "Submit a new idea. Text can be a positional arg or piped via stdin.",
		RunE:  runSubmit,
	}

	RootCmd.AddCommand(cmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	var text string
	if len(args) > 0 {
		text = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			text = string(b)
		}
	}

	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text is required (positional arg or stdin)")
	}

	s, err := openCatalog()
	if err != nil {
		return err
	}
	defer s.Close()

	idea, err := s.catalog.Submit(cmd.Context(), text)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	printIdea(idea)
	return nil
}
