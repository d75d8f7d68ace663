package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"autotagger/internal/database"
	"autotagger/internal/logging"

	"github.com/spf13/cobra"
)

// Photos fetched per page when listing a tag
const tagPageSize = 200

func newTagsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tags <folder> [tag]",
		Short: "List the tags of a tagged folder, or the photos carrying one tag",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, err := resolveFolder(args[0])
			if err != nil {
				return err
			}

			path := filepath.Join(folder, a.cfg.DatabaseName)
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("no tag library in %s (run \"autotagger scan %s\" first)", folder, args[0])
			}

			db, err := database.New(cmd.Context(), path)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					logging.Warn("Failed to close library: %v", err)
				}
			}()

			if len(args) == 2 {
				return listPhotos(cmd, db, args[1])
			}
			return listTags(cmd, db)
		},
	}
}

func listTags(cmd *cobra.Command, db *database.Database) error {
	tags, err := db.ListTags(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list tags: %w", err)
	}

	out := cmd.OutOrStdout()
	if run, ok, err := db.GetLastRun(cmd.Context()); err == nil && ok {
		fmt.Fprintf(out, "Last run %s: %d photos, %d tags, %d errors\n\n",
			run.At.Local().Format("2006-01-02 15:04:05"), run.Photos, run.Tags, run.Errors)
	}
	return writeTagTable(out, tags)
}

func writeTagTable(out io.Writer, tags []database.Tag) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TAG\tPHOTOS")
	for _, t := range tags {
		fmt.Fprintf(tw, "%s\t%d\n", t.Name, t.PhotoCount)
	}
	return tw.Flush()
}

func listPhotos(cmd *cobra.Command, db *database.Database, tag string) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tLOCATION\tPATH")

	for page := 1; ; page++ {
		result, err := db.PhotosByTag(cmd.Context(), tag, page, tagPageSize)
		if err != nil {
			return fmt.Errorf("failed to list photos for %q: %w", tag, err)
		}
		for _, p := range result.Items {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", p.CreatedAt, p.Location, p.ImagePath)
		}
		if page >= result.TotalPages {
			break
		}
	}
	return tw.Flush()
}
