// Package category maps file extensions to the content classes (pictures,
// audio, video and text) that name the top-level folders of the output tree.
package category

import (
	"path/filepath"
	"sort"
	"strings"
)

// Category identifies a content class in the output tree.
type Category string

const (
	None     Category = ""
	Pictures Category = "pictures"
	Audio    Category = "audio"
	Video    Category = "video"
	Text     Category = "text"
)

// All lists every category in output order.
var All = []Category{Pictures, Audio, Video, Text}

func (c Category) String() string {
	if c == None {
		return "none"
	}
	return string(c)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := byName[c]
	return ok
}

// Parse converts a case-insensitive category name into a Category.
func Parse(name string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(name)))
	if !c.Valid() {
		return None, false
	}
	return c, true
}

var byName = map[Category]struct{}{
	Pictures: {},
	Audio:    {},
	Video:    {},
	Text:     {},
}

// extensions maps a lowercased extension (leading dot included) to its category.
// The sets are disjoint.
var extensions = buildTable(map[Category][]string{
	Pictures: {".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".svg", ".tiff", ".tif", ".ico", ".heic", ".raw"},
	Audio:    {".mp3", ".wav", ".flac", ".m4a", ".aac", ".ogg", ".wma", ".opus", ".ape", ".alac"},
	Video:    {".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm", ".m4v", ".mpg", ".mpeg", ".3gp"},
	Text:     {".txt", ".pdf", ".doc", ".docx", ".rtf", ".odt", ".md", ".epub", ".mobi"},
})

func buildTable(sets map[Category][]string) map[string]Category {
	table := make(map[string]Category)
	for c, exts := range sets {
		for _, ext := range exts {
			if prev, dup := table[ext]; dup {
				panic("category: extension " + ext + " listed for both " + string(prev) + " and " + string(c))
			}
			table[ext] = c
		}
	}
	return table
}

// Extension returns the final extension of a file name, including the dot.
// Names without a dot and dotfiles such as ".bashrc" have no extension.
func Extension(name string) string {
	name = filepath.Base(name)
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return ""
	}
	return name[i:]
}

// Classify maps a file name to its category, or None when the extension is
// not recognized.
func Classify(name string) Category {
	ext := Extension(name)
	if ext == "" {
		return None
	}
	return extensions[strings.ToLower(ext)]
}

// Extensions returns the recognized extensions of c in sorted order.
func Extensions(c Category) []string {
	var out []string
	for ext, owner := range extensions {
		if owner == c {
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return out
}
