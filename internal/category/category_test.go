package category

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want Category
	}{
		{"photo.jpg", Pictures},
		{"PHOTO.JPG", Pictures},
		{"scan.TiFf", Pictures},
		{"song.mp3", Audio},
		{"movie.mp4", Video},
		{"clip.3gp", Video},
		{"document.pdf", Text},
		{"notes.txt", Text},
		{"archive.tar.md", Text},
		{"unknown.xyz", None},
		{"README", None},
		{".jpg", None},
		{".bashrc", None},
		{"trailingdot.", None},
		{"", None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.name))
		})
	}
}

func TestClassifyIgnoresDirectoryPart(t *testing.T) {
	assert.Equal(t, None, Classify("photos.jpg/README"))
	assert.Equal(t, Audio, Classify("/music/live/track.FLAC"))
}

func TestExtensionSetsAreDisjoint(t *testing.T) {
	seen := make(map[string]Category)
	for _, c := range All {
		exts := Extensions(c)
		assert.NotEmpty(t, exts, c.String())
		for _, ext := range exts {
			if prev, ok := seen[ext]; ok {
				t.Fatalf("extension %s in %s and %s", ext, prev, c)
			}
			seen[ext] = c
		}
	}
}

func TestExtensionsAreSorted(t *testing.T) {
	for _, c := range All {
		exts := Extensions(c)
		assert.True(t, sort.StringsAreSorted(exts), c.String())
		assert.Equal(t, exts, Extensions(c))
	}
	assert.Empty(t, Extensions(None))
}

func TestParse(t *testing.T) {
	c, ok := Parse(" Pictures ")
	assert.True(t, ok)
	assert.Equal(t, Pictures, c)

	_, ok = Parse("documents")
	assert.False(t, ok)
	assert.Equal(t, "none", None.String())
}
