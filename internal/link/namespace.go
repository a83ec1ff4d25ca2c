package link

import (
	"path/filepath"
	"strings"
)

// RootNamespace is used when no namespace can be derived from a path.
const RootNamespace = "root"

// Namespace returns the output sub-folder for source: the name of its
// immediate parent directory. Files sitting directly on a filesystem root
// fall back to a token derived from the volume, or RootNamespace.
func Namespace(source string) string {
	name := filepath.Base(filepath.Dir(source))
	switch name {
	case "", ".", "/", `\`:
		return VolumeToken(filepath.VolumeName(source))
	}
	return name
}

// VolumeToken turns a volume name such as "C:" or `\\server\share` into a
// path-safe token.
func VolumeToken(volume string) string {
	token := strings.NewReplacer(":", "", `\`, "", "/", "").Replace(volume)
	if token == "" {
		return RootNamespace
	}
	return token
}

// splitName separates a file name into stem and final extension. A dotfile
// has no extension.
func splitName(name string) (stem, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return name, ""
	}
	return name[:i], name[i:]
}
