package sorter

import (
	"sort"
	"sync"
	"time"
)

// BucketStat represents statistics for a single extension bucket.
type BucketStat struct {
	// Count is the number of files copied into the bucket.
	Count int `json:"count" yaml:"count"`
	// Size is the cumulative size in bytes.
	Size int64 `json:"size" yaml:"size"`
}

// Collision records two source files of one run that mapped to the same destination.
type Collision struct {
	// Destination is the shared target path.
	Destination string `json:"destination" yaml:"destination"`
	// Previous is the source copied earlier.
	Previous string `json:"previous" yaml:"previous"`
	// Current is the source that overwrote it.
	Current string `json:"current" yaml:"current"`
}

// Result holds aggregate statistics for a sorting run.
type Result struct {
	// Source is the directory that was walked.
	Source string `json:"source" yaml:"source"`
	// Output is the directory that received the buckets.
	Output string `json:"output" yaml:"output"`
	// Copied is the number of files copied successfully.
	Copied int64 `json:"copied" yaml:"copied"`
	// Failed is the number of files that could not be copied.
	Failed int64 `json:"failed" yaml:"failed"`
	// Skipped is the number of entries that are not copied by policy.
	Skipped int64 `json:"skipped" yaml:"skipped"`
	// DirErrors is the number of folders that could not be read.
	DirErrors int64 `json:"dir_errors" yaml:"dir_errors"`
	// TotalBytes is the cumulative size of all copied files.
	TotalBytes int64 `json:"total_bytes" yaml:"total_bytes"`
	// Buckets maps bucket names to their statistics.
	Buckets map[string]BucketStat `json:"buckets" yaml:"buckets"`
	// Collisions lists destinations written more than once.
	Collisions []Collision `json:"collisions,omitempty" yaml:"collisions,omitempty"`
	// Elapsed is the total time taken.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Incomplete reports whether any file or folder failed.
func (r *Result) Incomplete() bool {
	return r.Failed+r.DirErrors > 0
}

// BucketNames returns the bucket names ordered by size, largest first.
func (r *Result) BucketNames() []string {
	names := make([]string, 0, len(r.Buckets))
	for name := range r.Buckets {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		a, b := r.Buckets[names[i]], r.Buckets[names[j]]
		if a.Size != b.Size {
			return a.Size > b.Size
		}

		return names[i] < names[j]
	})

	return names
}

// collector aggregates results from concurrent fastwalk callbacks using a mutex.
type collector struct {
	mu         sync.Mutex // Protect concurrent access
	buckets    map[string]BucketStat
	written    map[string]string // destination -> source
	collisions []Collision
	copied     int64
	failed     int64
	skipped    int64
	dirErrors  int64
	totalBytes int64
}

func newCollector() *collector {
	return &collector{
		buckets: make(map[string]BucketStat),
		written: make(map[string]string),
	}
}

func (c *collector) addFailed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed++
}

func (c *collector) addSkipped() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skipped++
}

func (c *collector) addDirError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirErrors++
}

// addCopied records a successful copy. If dst was already written during
// this run, the earlier source is returned so the caller can report it.
func (c *collector) addCopied(src, dst, bucket string, size int64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.copied++
	c.totalBytes += size

	stat := c.buckets[bucket]
	stat.Count++
	stat.Size += size
	c.buckets[bucket] = stat

	prev, seen := c.written[dst]
	c.written[dst] = src

	if seen {
		c.collisions = append(c.collisions, Collision{Destination: dst, Previous: prev, Current: src})
	}

	return prev, seen
}

// progress returns the counters shown by the progress reporter.
func (c *collector) progress() (int64, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.copied, c.totalBytes
}

func (c *collector) finalize() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	sort.Slice(c.collisions, func(i, j int) bool {
		return c.collisions[i].Destination < c.collisions[j].Destination
	})

	return &Result{
		Copied:     c.copied,
		Failed:     c.failed,
		Skipped:    c.skipped,
		DirErrors:  c.dirErrors,
		TotalBytes: c.totalBytes,
		Buckets:    c.buckets,
		Collisions: c.collisions,
	}
}
