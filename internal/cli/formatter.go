package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/idelchi/sortfiles/internal/sorter"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// PrintJSON outputs the run summary in JSON format.
func PrintJSON(result *sorter.Result, writer io.Writer) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintYAML outputs the run summary in YAML format.
func PrintYAML(result *sorter.Result, writer io.Writer) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2) //nolint:mnd // Two-space indentation

	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("encoding YAML output: %w", err)
	}

	return encoder.Close()
}

// PrintTable outputs the run summary in human-readable table format.
func PrintTable(result *sorter.Result, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)
	warn := color.New(color.FgYellow).SprintFunc()
	fail := color.New(color.FgRed, color.Bold).SprintFunc()

	fmt.Fprintln(w, "\nBuckets:\t\t")

	for _, name := range result.BucketNames() {
		stat := result.Buckets[name]
		pct := 0.0
		if result.TotalBytes > 0 {
			pct = 100.0 * float64(stat.Size) / float64(result.TotalBytes)
		}
		fmt.Fprintf(w, "  %s/\t%d files, %s (%.1f%%)\n",
			name, stat.Count, humanize.IBytes(uint64(stat.Size)), pct) //nolint:gosec // Size is always positive
	}

	if len(result.Collisions) > 0 {
		fmt.Fprintln(w, "\nOverwritten:\t\t")

		for _, c := range result.Collisions {
			fmt.Fprintf(w, "  '%s'\t%s\n", c.Destination, warn("from '"+c.Previous+"' by '"+c.Current+"'"))
		}
	}

	fmt.Fprintln(w, "\nStats:\t\t")
	fmt.Fprintf(w, "Copied files:\t%d\n", result.Copied)
	fmt.Fprintf(w, "Total size:\t%s (%d bytes)\n",
		humanize.IBytes(uint64(result.TotalBytes)), result.TotalBytes) //nolint:gosec // Bytes is always positive

	if result.Skipped > 0 {
		fmt.Fprintf(w, "Skipped entries:\t%s\n", warn(result.Skipped))
	}

	if result.Failed > 0 {
		fmt.Fprintf(w, "Failed files:\t%s\n", fail(result.Failed))
	}

	if result.DirErrors > 0 {
		fmt.Fprintf(w, "Unreadable folders:\t%s\n", fail(result.DirErrors))
	}

	fmt.Fprintf(w, "\nElapsed:\t%v\n", result.Elapsed)

	return w.Flush()
}
