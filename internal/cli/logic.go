package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/idelchi/sortfiles/internal/lock"
	"github.com/idelchi/sortfiles/internal/logging"
	"github.com/idelchi/sortfiles/internal/sorter"
)

// ErrIncomplete is returned in strict mode when any file or folder failed.
var ErrIncomplete = errors.New("some files could not be sorted")

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func logic(ctx context.Context, options Options, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A bad source must not leave a log file or lock behind.
	if err := sorter.ValidateSource(options.Source); err != nil {
		return err
	}

	tty := isTerminal(stderr)
	enableProgress := options.Quiet && tty

	log, err := logging.New(logging.Config{
		File:    options.LogFile,
		Console: stderr,
		Debug:   options.Debug,
		Quiet:   options.Quiet,
		Color:   tty,
	})
	if err != nil {
		return err
	}
	defer log.Close()

	// The lock key resolves symlinks, which needs the folder to exist.
	if err := os.MkdirAll(options.Output, 0o755); err != nil {
		return fmt.Errorf("creating output %q: %w", options.Output, err)
	}

	outputLock, err := lock.New(options.Output)
	if err != nil {
		return err
	}

	if err := outputLock.Acquire(); err != nil {
		return err
	}
	defer outputLock.Release()

	if options.LogFile != "" {
		options.Skip = append(options.Skip, options.LogFile)
	}

	// Simple progress callback that prints directly to stderr
	var progressHook func(files, bytes int64)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(stderr, "\033[?25l")
		defer fmt.Fprint(stderr, "\033[?25h")

		progressHook = func(files, bytes int64) {
			msg := fmt.Sprintf("Sorting… %d files, %s",
				files, humanize.IBytes(uint64(bytes))) //nolint:gosec // Bytes is always positive
			fmt.Fprintf(stderr, "\r\033[2K%s\r", msg)
		}
	}

	result, err := sorter.Run(ctx, options.Options, log.Logger, progressHook)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	if err := report(result, options.Format, stdout); err != nil {
		return err
	}

	if options.Strict && result.Incomplete() {
		return fmt.Errorf("%w: %d files failed, %d folders unreadable", ErrIncomplete, result.Failed, result.DirErrors)
	}

	return nil
}

func report(result *sorter.Result, format string, w io.Writer) error {
	switch strings.ToLower(format) {
	case "json":
		return PrintJSON(result, w)
	case "yaml":
		return PrintYAML(result, w)
	case "table":
		return PrintTable(result, w)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
