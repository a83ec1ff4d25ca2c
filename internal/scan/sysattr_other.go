//go:build !windows

package scan

import "io/fs"

// isSystemFile always reports false: there is no system attribute here.
func isSystemFile(fs.DirEntry) bool {
	return false
}
