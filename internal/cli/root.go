package cli

import (
	"fmt"
	"io"

	"autotagger/internal/database"
	"autotagger/internal/exifmeta"
	"autotagger/internal/logging"
	"autotagger/internal/startup"
	"autotagger/internal/workers"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries state shared by the subcommands of one invocation.
type app struct {
	v          *viper.Viper
	cfg        *startup.Config
	configFile string
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: startup.NewViper()}

	root := &cobra.Command{
		Use:           "autotagger",
		Short:         "Tag photos by capture year and GPS location",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: autotagger.yaml in the user config dir or working directory)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.Int("workers", workers.DefaultExtraction, "metadata extraction workers, 0 for automatic")
	flags.String("database-name", database.DefaultFileName, "library file created in the scanned folder")
	flags.Bool("exiftool", true, "use exiftool as the secondary metadata reader")
	flags.String("exiftool-path", "", "exiftool binary (default: search PATH)")

	bindings := map[string]string{
		startup.KeyLogLevel:        "log-level",
		startup.KeyWorkers:         "workers",
		startup.KeyDatabaseName:    "database-name",
		startup.KeyExiftoolEnabled: "exiftool",
		startup.KeyExiftoolPath:    "exiftool-path",
	}
	for key, name := range bindings {
		if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}

	versionCmd := newVersionCommand()
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		return a.loadConfig()
	}

	root.AddCommand(
		newScanCommand(a),
		newTagsCommand(a),
		newServeCommand(a),
		newDiagnoseCommand(a),
		versionCmd,
	)
	return root
}

// Execute runs the command line.
func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) loadConfig() error {
	if a.configFile != "" {
		a.v.SetConfigFile(a.configFile)
	}
	cfg, err := startup.LoadConfig(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// newReaders builds the reader chain: goexif first, then exiftool when
// enabled and available. The returned func stops exiftool.
func (a *app) newReaders() ([]exifmeta.Reader, func()) {
	readers := []exifmeta.Reader{exifmeta.NewGoexifReader()}
	closeFn := func() {}

	if a.cfg.Exiftool.Enabled {
		et, err := exifmeta.NewExiftoolReader(a.cfg.Exiftool.Path)
		if err != nil {
			logging.Warn("exiftool unavailable, continuing with goexif only: %v", err)
		} else {
			readers = append(readers, et)
			closeFn = func() {
				if err := et.Close(); err != nil {
					logging.Warn("Failed to stop exiftool: %v", err)
				}
			}
		}
	}
	return readers, closeFn
}

func (a *app) newExtractor() (*exifmeta.Extractor, func()) {
	readers, closeFn := a.newReaders()
	ext := exifmeta.NewExtractor(readers...)
	logging.Debug("Metadata readers: %v", ext.ReaderNames())
	return ext, closeFn
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	info := startup.GetBuildInfo()
	fmt.Fprintf(w, "autotagger %s\n", info.Version)
	fmt.Fprintf(w, "  commit:     %s\n", info.Commit)
	fmt.Fprintf(w, "  built:      %s\n", info.BuildTime)
	fmt.Fprintf(w, "  go:         %s %s/%s\n", info.GoVersion, info.OS, info.Arch)
}
