// Package cli implements the ideas admin commands. Commands talk to the
// configured store directly, without the HTTP service.
package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/emalfdraw/internal/config"
	"github.com/JaimeStill/emalfdraw/internal/ideas"
	"github.com/JaimeStill/emalfdraw/internal/infrastructure"
)

var (
	formatFlag  string
	verboseFlag bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "ideas",
	Short: "Manage the EmalfDraw idea catalog",
	Long:  "Inspect, seed, and extend the drawing idea catalog using the service configuration (config.toml and EMALFDRAW_* variables).",

	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log store activity to stderr")
}

// session is an open catalog plus the infrastructure behind it.
type session struct {
	cfg     *config.Config
	infra   *infrastructure.Infrastructure
	catalog ideas.System
}

func (s *session) Close() error {
	return s.infra.Close()
}

func openCatalog() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := slog.LevelWarn
	if verboseFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	infra, err := infrastructure.NewWithLogger(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	catalog := ideas.New(
		infra.Store,
		logger,
		nil,
		ideas.Options{Timeout: cfg.Catalog.StoreTimeoutDuration()},
	)

	return &session{cfg: cfg, infra: infra, catalog: catalog}, nil
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func printIdea(idea *ideas.Idea) {
	if formatFlag == "text" {
		marker := " "
		if idea.UserSubmitted {
			marker = "*"
		}
		fmt.Printf("%s %s  %s\n", marker, idea.CreatedAt.Format("2006-01-02 15:04:05"), idea.Text)
		return
	}
	printJSON(idea)
}
