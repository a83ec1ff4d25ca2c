// Package pathutil holds path helpers shared by the scanner and the planner.
package pathutil

import (
	"path/filepath"
	"strings"
)

// Normalize returns a canonical filesystem path string.
// It removes trailing slashes, collapses "." and "..", and
// preserves relative paths when provided.
func Normalize(path string) string {
	if path == "" {
		return path
	}
	return filepath.Clean(path)
}

// Within reports whether path is dir itself or lies below it. Both are
// compared in normalized form; no symlinks are resolved.
func Within(dir, path string) bool {
	dir, path = Normalize(dir), Normalize(path)
	if dir == "" || path == "" {
		return false
	}
	if path == dir {
		return true
	}
	prefix := dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}
