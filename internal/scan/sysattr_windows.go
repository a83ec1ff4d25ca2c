//go:build windows

package scan

import (
	"io/fs"
	"syscall"
)

// isSystemFile reports whether the file carries FILE_ATTRIBUTE_SYSTEM.
// Metadata errors fail open.
func isSystemFile(de fs.DirEntry) bool {
	info, err := de.Info()
	if err != nil {
		return false
	}
	data, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return false
	}
	return data.FileAttributes&syscall.FILE_ATTRIBUTE_SYSTEM != 0
}
