package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"autotagger/internal/indexer"
	"autotagger/internal/logging"

	"github.com/spf13/cobra"
)

var errRunCancelled = errors.New("tagging run cancelled")

func newScanCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <folder>",
		Short: "Tag every image below a folder by year and location",
		Long: `Scan walks the folder recursively, reads each image's capture time and
GPS position, and records photos, year tags and location tags in the
library database inside the folder. Press Ctrl+C to cancel; photos already
committed are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, err := resolveFolder(args[0])
			if err != nil {
				return err
			}

			// The printer shows run log lines; keep process logging to warnings
			if a.cfg.LogLevel == "" {
				logging.SetLevel(logging.LevelWarn)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ext, closeExtractor := a.newExtractor()
			defer closeExtractor()

			pipeline := indexer.NewPipeline(ext, indexer.Config{
				Workers:      a.cfg.Workers,
				DatabaseName: a.cfg.DatabaseName,
			})

			summary := pipeline.Run(ctx, folder, newStdoutProgress())
			return runResult(summary)
		},
	}
}

// resolveFolder returns the absolute path of an existing directory.
func resolveFolder(folder string) (string, error) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return "", fmt.Errorf("invalid folder %s: %w", folder, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("folder does not exist: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// runResult maps a finished run onto the command's error.
func runResult(summary indexer.Summary) error {
	switch summary.Phase {
	case indexer.PhaseCancelled:
		return errRunCancelled
	case indexer.PhaseFailed:
		return fmt.Errorf("tagging run failed: %w", summary.Err)
	}
	return nil
}
