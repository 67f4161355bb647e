package sorter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucket(t *testing.T) {
	tests := []struct {
		name string
		file string
		want string
	}{
		{name: "simple extension", file: "a.txt", want: "txt"},
		{name: "mixed case", file: "Photo.JPG", want: "jpg"},
		{name: "only last suffix", file: "archive.tar.gz", want: "gz"},
		{name: "no extension", file: "noext", want: NoExtension},
		{name: "trailing dot", file: "report.", want: NoExtension},
		{name: "dotfile", file: ".gitignore", want: "gitignore"},
		{name: "dotfile with suffix", file: ".env.LOCAL", want: "local"},
		{name: "bucket marker name", file: "no_extension", want: NoExtension},
		{name: "full path", file: filepath.Join("a", "b.d", "c"), want: NoExtension},
		{name: "nested path", file: filepath.Join("a", "b", "c", "file.txt"), want: "txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Bucket(tt.file))
		})
	}
}

func TestDestination(t *testing.T) {
	assert.Equal(t,
		filepath.Join("out", "jpg", "Photo.JPG"),
		Destination(filepath.Join("in", "deep", "Photo.JPG"), "out"))
	assert.Equal(t,
		filepath.Join("out", NoExtension, "Makefile"),
		Destination("Makefile", "out"))
}
