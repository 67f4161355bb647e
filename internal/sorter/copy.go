package sorter

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// tempPattern names in-flight copies inside a bucket directory.
const tempPattern = ".sortfiles-*.tmp"

// MetadataError reports that a file was copied but its permission bits or
// modification time could not be applied to the destination.
type MetadataError struct {
	Path string
	Err  error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("preserving metadata of %s: %v", e.Path, e.Err)
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}

// Copier classifies files by extension and copies them into bucket folders.
// It holds no state across calls and is safe for concurrent use.
type Copier struct {
	fs afero.Fs
}

// NewCopier returns a Copier operating on fs.
// A nil fs selects the operating system filesystem.
func NewCopier(fs afero.Fs) *Copier {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	return &Copier{fs: fs}
}

// Destination returns the path src is copied to under outputDir.
func Destination(src, outputDir string) string {
	name := filepath.Base(src)

	return filepath.Join(outputDir, Bucket(name), name)
}

// Copy duplicates src into outputDir/<bucket>/<name>, overwriting any file
// already there. It returns the destination path and the number of bytes
// written.
//
// The content is written to a temporary file in the bucket folder and
// renamed into place, so concurrent copies onto the same name never
// interleave: the last rename wins. A *MetadataError is returned alongside
// a successful copy when mode or mtime could not be preserved.
func (c *Copier) Copy(src, outputDir string) (string, int64, error) {
	dst := Destination(src, outputDir)
	dir := filepath.Dir(dst)

	in, err := c.fs.Open(src)
	if err != nil {
		return dst, 0, fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return dst, 0, fmt.Errorf("stat source: %w", err)
	}

	if !info.Mode().IsRegular() {
		return dst, 0, fmt.Errorf("source is not a regular file: %s", info.Mode().Type())
	}

	if err := c.fs.MkdirAll(dir, 0o755); err != nil {
		return dst, 0, fmt.Errorf("creating folder %q: %w", dir, err)
	}

	tmp, err := afero.TempFile(c.fs, dir, tempPattern)
	if err != nil {
		return dst, 0, fmt.Errorf("creating temporary file in %q: %w", dir, err)
	}

	tmpPath := tmp.Name()
	renamed := false

	defer func() {
		if !renamed {
			_ = tmp.Close()
			_ = c.fs.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, in)
	if err != nil {
		return dst, written, fmt.Errorf("writing %q: %w", tmpPath, err)
	}

	if err := tmp.Sync(); err != nil {
		return dst, written, fmt.Errorf("syncing %q: %w", tmpPath, err)
	}

	if err := tmp.Close(); err != nil {
		return dst, written, fmt.Errorf("closing %q: %w", tmpPath, err)
	}

	// Applied before the rename so the file never appears with temp-file permissions.
	metaErr := c.preserve(tmpPath, info.Mode().Perm(), info.ModTime())

	if err := c.fs.Rename(tmpPath, dst); err != nil {
		return dst, written, fmt.Errorf("moving into place: %w", err)
	}

	renamed = true

	if metaErr != nil {
		return dst, written, &MetadataError{Path: dst, Err: metaErr}
	}

	return dst, written, nil
}

func (c *Copier) preserve(path string, mode fs.FileMode, mtime time.Time) error {
	return errors.Join(
		c.fs.Chmod(path, mode),
		c.fs.Chtimes(path, mtime, mtime),
	)
}
