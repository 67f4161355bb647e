package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/idelchi/sortfiles/internal/sorter"
)

type fixture struct {
	src, out, log string
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	dir := t.TempDir()
	f := fixture{
		src: filepath.Join(dir, "src"),
		out: filepath.Join(dir, "out"),
		log: filepath.Join(dir, "sort_files.log"),
	}

	for rel, content := range map[string]string{
		"a.txt":     "a",
		"sub/b.txt": "bb",
		"sub/c.jpg": "ccc",
		"noext":     "n",
	} {
		path := filepath.Join(f.src, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	return f
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := New("v1.2.3").Command()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}

func TestCommandJSON(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, err := execute(t, "--log-file", f.log, "-o", "json", f.src, f.out)
	require.NoError(t, err)

	var result sorter.Result
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))

	assert.Equal(t, int64(4), result.Copied)
	assert.Equal(t, int64(7), result.TotalBytes)
	assert.Equal(t, sorter.BucketStat{Count: 2, Size: 3}, result.Buckets["txt"])

	for _, rel := range []string{"txt/a.txt", "txt/b.txt", "jpg/c.jpg", "no_extension/noext"} {
		assert.FileExists(t, filepath.Join(f.out, filepath.FromSlash(rel)))
	}

	assert.Contains(t, stderr, "INFO\tCopied file")

	logData, err := os.ReadFile(f.log)
	require.NoError(t, err)
	assert.Contains(t, string(logData), "INFO\tCopied file")
	assert.Contains(t, string(logData), filepath.Join("no_extension", "noext"))
}

func TestCommandYAML(t *testing.T) {
	f := newFixture(t)

	stdout, _, err := execute(t, "--log-file", f.log, "--output", "yaml", f.src, f.out)
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, 4, result["copied"])
	assert.Contains(t, result["buckets"], "no_extension")
}

func TestCommandTable(t *testing.T) {
	f := newFixture(t)

	stdout, _, err := execute(t, "--log-file", f.log, f.src, f.out)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Buckets:")
	assert.Contains(t, stdout, "txt/")
	assert.Contains(t, stdout, "no_extension/")
	assert.Contains(t, stdout, "Copied files:")
	assert.NotContains(t, stdout, "Failed files:")
}

func TestCommandQuiet(t *testing.T) {
	f := newFixture(t)

	_, stderr, err := execute(t, "-q", "--log-file", f.log, f.src, f.out)
	require.NoError(t, err)
	assert.NotContains(t, stderr, "Copied file")

	logData, err := os.ReadFile(f.log)
	require.NoError(t, err)
	assert.Contains(t, string(logData), "Copied file")
}

func TestCommandStrict(t *testing.T) {
	f := newFixture(t)

	if err := os.Symlink(filepath.Join(f.src, "missing"), filepath.Join(f.src, "dangling.txt")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	_, stderr, err := execute(t, "--log-file", f.log, f.src, f.out)
	require.NoError(t, err, "failures are not fatal by default")
	assert.Contains(t, stderr, "ERROR")

	_, _, err = execute(t, "--strict", "--log-file", f.log, f.src, f.out)
	require.ErrorIs(t, err, ErrIncomplete)
}

func TestCommandErrors(t *testing.T) {
	f := newFixture(t)
	file := filepath.Join(f.src, "a.txt")

	tests := []struct {
		name   string
		args   []string
		errMsg string
	}{
		{
			name:   "missing source",
			args:   []string{"--log-file", f.log, filepath.Join(f.src, "missing"), f.out},
			errMsg: "accessing source",
		},
		{
			name:   "source is a file",
			args:   []string{"--log-file", f.log, file, f.out},
			errMsg: sorter.ErrSourceNotDir.Error(),
		},
		{
			name:   "one argument",
			args:   []string{f.src},
			errMsg: "accepts 2 arg(s)",
		},
		{
			name:   "three arguments",
			args:   []string{f.src, f.out, f.out},
			errMsg: "accepts 2 arg(s)",
		},
		{
			name:   "invalid format",
			args:   []string{"-o", "xml", f.src, f.out},
			errMsg: "invalid output format",
		},
		{
			name:   "negative workers",
			args:   []string{"--workers=-1", f.src, f.out},
			errMsg: "workers cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)

			// Rejected runs leave nothing behind.
			assert.NoFileExists(t, f.log)
			assert.NoDirExists(t, f.out)
		})
	}
}

func TestCommandVersion(t *testing.T) {
	stdout, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3\n", stdout)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		options Options
		wantErr bool
	}{
		{name: "table", options: Options{Format: "table"}},
		{name: "json", options: Options{Format: "json"}},
		{name: "yaml", options: Options{Format: "yaml"}},
		{name: "unknown format", options: Options{Format: "csv"}, wantErr: true},
		{
			name:    "negative rate limit",
			options: Options{Format: "table", Options: sorter.Options{RateLimit: -1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.options.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
