package sorter

import (
	"path/filepath"
	"strings"
)

// NoExtension is the bucket for files whose name has no suffix.
const NoExtension = "no_extension"

// Bucket returns the destination subfolder name for a file.
// Only the text after the last dot of the base name is used, lowercased.
// A dotfile such as ".gitignore" classifies as "gitignore"; names without a
// dot or ending in a dot classify as NoExtension.
func Bucket(name string) string {
	ext := strings.TrimPrefix(filepath.Ext(filepath.Base(name)), ".")
	if ext == "" {
		return NoExtension
	}

	return strings.ToLower(ext)
}
