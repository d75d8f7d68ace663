package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"autotagger/internal/exifmeta"

	"github.com/spf13/cobra"
)

func newDiagnoseCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose <file>",
		Short: "Show what each metadata reader finds in one image",
		Long: `Diagnose runs every configured metadata reader on a single file and
prints whether it found a metadata block, its date and GPS verdicts and its
trace, followed by the merged result a scan would store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("invalid file %s: %w", args[0], err)
			}
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("file does not exist: %s", path)
			}
			if !info.Mode().IsRegular() {
				return fmt.Errorf("not a regular file: %s", path)
			}

			readers, closeReaders := a.newReaders()
			defer closeReaders()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, path)
			for _, r := range readers {
				writeReading(out, r.Name(), r.Read(cmd.Context(), path))
			}

			md := exifmeta.NewExtractor(readers...).Extract(cmd.Context(), path)
			writeMetadata(out, md)
			return nil
		},
	}
}

func writeReading(w io.Writer, name string, r exifmeta.Reading) {
	fmt.Fprintf(w, "\n[%s]\n", name)
	fmt.Fprintf(w, "  Metadata block: %v\n", r.Found)
	if r.Err != nil {
		fmt.Fprintf(w, "  Error:          %v\n", r.Err)
	}
	if r.HasDate() {
		fmt.Fprintf(w, "  Date:           %s (%s)\n", exifmeta.FormatISO(r.Date), r.DateTag)
	} else {
		fmt.Fprintln(w, "  Date:           -")
	}
	fmt.Fprintf(w, "  GPS:            %s\n", r.GPS)
	if r.Location != "" {
		fmt.Fprintf(w, "  Location:       %s\n", r.Location)
	}
	for _, line := range r.Trace {
		fmt.Fprintf(w, "    %s\n", line)
	}
}

func writeMetadata(w io.Writer, md exifmeta.Metadata) {
	location := md.Location
	if location == "" {
		location = "-"
	}
	fmt.Fprintln(w, "\n[merged]")
	fmt.Fprintf(w, "  Capture time:   %s (%s)\n", md.CaptureTime, md.DateSource)
	fmt.Fprintf(w, "  Location:       %s\n", location)
	fmt.Fprintf(w, "  GPS:            %s\n", md.GPS)
	if md.ReaderFailures > 0 {
		fmt.Fprintf(w, "  Reader failures: %d\n", md.ReaderFailures)
	}
}
