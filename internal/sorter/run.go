package sorter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

var (
	// ErrSourceNotDir is returned when the source path is not a directory.
	ErrSourceNotDir = errors.New("source is not a directory")
	// ErrOutputIsSource is returned when source and output resolve to the same directory.
	ErrOutputIsSource = errors.New("output directory is the source directory")
)

// Options configures a sorting run.
type Options struct {
	// Source is the directory to walk.
	Source string
	// Output is the directory receiving the extension buckets.
	Output string
	// Skip lists paths that are never visited (e.g. the active log file).
	Skip []string
	// Workers is the number of concurrent walk workers (0 = fastwalk default).
	Workers int
	// RateLimit caps copies per second (0 = unlimited).
	RateLimit int
	// FollowSymlinks traverses symlinked directories.
	FollowSymlinks bool
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
}

// startProgressReporter invokes hook(files, bytes) on each tick until ctx is done.
//
//nolint:varnamelen // c is idiomatic for collector
func startProgressReporter(ctx context.Context, c *collector, hook func(int64, int64), interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(c.progress())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// resolveDir cleans path, makes it absolute and resolves symlinks.
func resolveDir(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolving absolute path of %q: %w", path, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", path, err)
	}

	return resolved, nil
}

// within reports whether path equals dir or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)

	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// resolvesTo reports whether path resolves to the directory target.
func resolvesTo(path, target string) bool {
	resolved, err := filepath.EvalSymlinks(path)

	return err == nil && resolved == target
}

// ValidateSource checks that source exists and is a directory.
func ValidateSource(source string) error {
	if source == "" {
		return errors.New("source path is required")
	}

	if statInfo, err := os.Stat(source); err != nil {
		return fmt.Errorf("accessing source %q: %w", source, err)
	} else if !statInfo.IsDir() {
		return fmt.Errorf("%w: %q", ErrSourceNotDir, source)
	}

	return nil
}

// prepare validates the source and creates the output directory.
func prepare(opt Options) (string, string, error) {
	if err := ValidateSource(opt.Source); err != nil {
		return "", "", err
	}

	if opt.Output == "" {
		return "", "", errors.New("output path is required")
	}

	source, err := resolveDir(opt.Source)
	if err != nil {
		return "", "", err
	}

	if err := os.MkdirAll(opt.Output, 0o755); err != nil {
		return "", "", fmt.Errorf("creating output %q: %w", opt.Output, err)
	}

	output, err := resolveDir(opt.Output)
	if err != nil {
		return "", "", err
	}

	if output == source {
		return "", "", fmt.Errorf("%w: %q", ErrOutputIsSource, opt.Output)
	}

	return source, output, nil
}

// Run copies every file under opt.Source into per-extension buckets below
// opt.Output and returns aggregated statistics.
//
// Only startup problems are returned as errors: a missing or non-directory
// source, or an output that cannot be created. Unreadable folders and files
// that fail to copy are logged, counted in the Result, and skipped.
//
// The walk can be cancelled via ctx, in which case the context error is
// returned and files copied so far stay in place. Progress updates are sent
// to progressHook if provided.
//
//nolint:gocognit,funlen,cyclop // Walk callback keeps the entry-type policy in one place.
func Run(ctx context.Context, opt Options, log *zap.Logger, progressHook func(int64, int64)) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}

	source, output, err := prepare(opt)
	if err != nil {
		return nil, err
	}

	skip := make(map[string]struct{}, len(opt.Skip)+1)

	if within(output, source) {
		log.Debug("output lies inside source, skipping it", zap.String("output", output))
		skip[output] = struct{}{}
	}

	for _, p := range opt.Skip {
		if abs, err := filepath.Abs(p); err == nil {
			if resolved, err := filepath.EvalSymlinks(abs); err == nil {
				abs = resolved
			}

			skip[abs] = struct{}{}
		}
	}

	var limiter *rate.Limiter
	if opt.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opt.RateLimit), 1)
	}

	collector := newCollector()
	copier := NewCopier(nil)

	// Create child context to ensure progress reporter cleanup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startProgressReporter(ctx, collector, progressHook, opt.ProgressInterval)

	copyFile := func(path string) error {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		}

		dst, size, err := copier.Copy(path, output)

		var metaErr *MetadataError
		if errors.As(err, &metaErr) {
			log.Warn("Could not preserve metadata",
				zap.String("destination", dst), zap.Error(metaErr.Err))

			err = nil
		}

		if err != nil {
			collector.addFailed()
			log.Error("Error copying file",
				zap.String("source", path), zap.String("destination", dst), zap.Error(err))

			return nil
		}

		log.Info("Copied file", zap.String("source", path), zap.String("destination", dst))

		if prev, seen := collector.addCopied(path, dst, Bucket(path), size); seen {
			log.Warn("Overwrote file copied earlier in this run",
				zap.String("destination", dst), zap.String("previous", prev), zap.String("source", path))
		}

		return nil
	}

	log.Info("Sorting files", zap.String("source", source), zap.String("output", output))

	start := time.Now()

	conf := &fastwalk.Config{
		Follow:     opt.FollowSymlinks,
		NumWorkers: opt.Workers,
	}

	//nolint:varnamelen // d is standard for DirEntry
	walkErr := fastwalk.Walk(conf, source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			collector.addDirError()
			log.Error("Error reading folder", zap.String("folder", path), zap.Error(err))

			return nil
		}

		// Check cancellation periodically
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if _, ok := skip[path]; ok {
			log.Debug("skipping excluded path", zap.String("path", path))

			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() {
			// Followed links can reach the output under another name.
			if opt.FollowSymlinks && resolvesTo(path, output) {
				log.Debug("skipping output reached through a symlink", zap.String("path", path))

				return filepath.SkipDir
			}

			return nil
		}

		typ := d.Type()

		switch {
		case typ.IsRegular():
			return copyFile(path)
		case typ&fs.ModeSymlink != 0:
			target, err := os.Stat(path)
			if err != nil {
				collector.addFailed()
				log.Error("Error resolving symlink", zap.String("source", path), zap.Error(err))

				return nil
			}

			switch {
			case target.Mode().IsRegular():
				return copyFile(path)
			case target.IsDir() && opt.FollowSymlinks && resolvesTo(path, output):
				collector.addSkipped()
				log.Warn("Skipping symlink to the output folder", zap.String("path", path))

				return filepath.SkipDir
			case target.IsDir() && opt.FollowSymlinks:
				return nil
			case target.IsDir():
				collector.addSkipped()
				log.Warn("Skipping symlinked folder", zap.String("path", path))

				return nil
			}

			collector.addSkipped()
			log.Warn("Skipping unsupported file type",
				zap.String("path", path), zap.Stringer("mode", target.Mode().Type()))

			return nil
		default:
			collector.addSkipped()
			log.Warn("Skipping unsupported file type", zap.String("path", path), zap.Stringer("mode", typ))

			return nil
		}
	})

	result := collector.finalize()
	result.Source = source
	result.Output = output
	result.Elapsed = time.Since(start)

	if walkErr != nil {
		log.Error("Sorting interrupted", zap.Error(walkErr), zap.Int64("copied", result.Copied))

		return result, walkErr
	}

	log.Info("Sorting finished",
		zap.Int64("copied", result.Copied),
		zap.Int64("failed", result.Failed),
		zap.Int64("skipped", result.Skipped),
		zap.Int64("dir_errors", result.DirErrors),
		zap.Duration("elapsed", result.Elapsed))

	return result, nil
}
