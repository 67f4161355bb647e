// Package lock prevents two runs from writing into the same output directory
// at the same time.
package lock

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("output directory is in use by another run")

// OutputLock wraps a flock file lock keyed on an output directory.
type OutputLock struct {
	flock *flock.Flock
	path  string
}

// PathFor returns the lock file used for output, placed in dir.
// The name is derived from the absolute output path, with symlinks resolved
// when it exists, so the lock file never lands inside the output tree.
func PathFor(dir, output string) (string, error) {
	abs, err := filepath.Abs(output)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", output, err)
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	sum := sha256.Sum256([]byte(abs))

	return filepath.Join(dir, "sortfiles-"+hex.EncodeToString(sum[:8])+".lock"), nil
}

// New creates a lock for output with its lock file in os.TempDir().
func New(output string) (*OutputLock, error) {
	path, err := PathFor(os.TempDir(), output)
	if err != nil {
		return nil, err
	}

	return &OutputLock{
		flock: flock.New(path),
		path:  path,
	}, nil
}

// Path returns the lock file path.
func (l *OutputLock) Path() string {
	return l.path
}

// Acquire takes the lock without blocking.
// It returns ErrLocked if another process holds it.
func (l *OutputLock) Acquire() error {
	acquired, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to try lock on %s: %w", l.path, err)
	}

	if !acquired {
		return fmt.Errorf("%w (lock file %s)", ErrLocked, l.path)
	}

	return nil
}

// Release releases the lock.
func (l *OutputLock) Release() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}

	return nil
}
