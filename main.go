// Command sortfiles copies files into folders named after their extension.
package main

import (
	"fmt"
	"os"

	"github.com/idelchi/sortfiles/internal/cli"
)

// Is set during compilation.
//
//nolint:gochecknoglobals // Set by ldflags
var version = "unknown - unofficial & generated by unknown"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "sortfiles: %v\n", err)
		os.Exit(1)
	}
}
