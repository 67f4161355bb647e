package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/idelchi/sortfiles/internal/logging"
	"github.com/idelchi/sortfiles/internal/sorter"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// Options holds everything parsed from the command line.
type Options struct {
	sorter.Options

	// LogFile is the persistent log destination.
	LogFile string
	// Quiet limits console logging to errors and enables the progress line.
	Quiet bool
	// Debug enables debug logging.
	Debug bool
	// Format is the summary format (table, json or yaml).
	Format string
	// Strict makes the run fail when any file or folder failed.
	Strict bool
}

// allowedFormats lists the supported summary formats.
//
//nolint:gochecknoglobals // Config constant
var allowedFormats = []string{"table", "json", "yaml"}

// Validate checks the parsed options.
func (o Options) Validate() error {
	if !slices.Contains(allowedFormats, o.Format) {
		return fmt.Errorf("invalid output format %q: must be one of %v", o.Format, allowedFormats)
	}

	if o.Workers < 0 {
		return errors.New("workers cannot be negative")
	}

	if o.RateLimit < 0 {
		return errors.New("rate limit cannot be negative")
	}

	return nil
}

// Command builds the root command.
func (c CLI) Command() *cobra.Command {
	var options Options

	cmd := &cobra.Command{
		Use:   "sortfiles [flags] SOURCE OUTPUT",
		Short: "Copy files into folders named after their extension",
		Long: heredoc.Doc(`
			sortfiles walks SOURCE recursively and copies every file into
			OUTPUT/<extension>/<name>. Extensions are lowercased; files without
			one go into OUTPUT/no_extension. Source subfolders are flattened and
			a file with the same name in the same bucket is overwritten.

			Every copy and every failure is logged to the console and to the
			log file. Failures never stop the run; use --strict to exit non-zero
			when any occurred.
		`),
		Example: heredoc.Doc(`
			sortfiles ~/Downloads ~/Sorted
			sortfiles -q -o json ./photos ./by-type
		`),
		Version:       c.version,
		Args:          cobra.ExactArgs(2), //nolint:mnd // SOURCE and OUTPUT
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Source = args[0]
			options.Output = args[1]

			if err := options.Validate(); err != nil {
				return err
			}

			return logic(cmd.Context(), options, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.SortFlags = false

	flags.IntVarP(&options.Workers, "workers", "w", 0, "Concurrent walk workers (0 = automatic)")
	flags.IntVar(&options.RateLimit, "rate-limit", 0, "Maximum copies per second (0 = unlimited)")
	flags.BoolVarP(&options.FollowSymlinks, "follow", "L", false, "Follow symlinked folders")
	flags.StringVar(&options.LogFile, "log-file", logging.DefaultFile, "Persistent log file")
	flags.BoolVarP(&options.Quiet, "quiet", "q", false, "Only log errors to the console and show progress")
	flags.BoolVar(&options.Debug, "debug", false, "Enable debug output")
	flags.StringVarP(&options.Format, "output", "o", "table", "Summary format: table, json or yaml")
	flags.BoolVar(&options.Strict, "strict", false, "Exit non-zero when any file or folder failed")

	cmd.SetVersionTemplate("{{.Version}}\n")

	return cmd
}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute() error {
	return c.Command().Execute()
}
