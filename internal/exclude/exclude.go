// Package exclude decides which directories are pruned from a scan.
package exclude

import (
	"regexp"
	"strings"
)

// defaultDirs holds lowercased directory names that are never traversed.
var defaultDirs = []string{
	// Windows system directories
	"windows", "program files", "program files (x86)", "programdata",
	"$recycle.bin", "system volume information", "$windows.~bt", "$windows.~ws",
	"recovery", "boot", "msocache", "perflogs",

	// application data and temp
	"appdata", "temp", "tmp", "cache", "caches",

	// development folders
	"node_modules", "venv", "__pycache__", ".venv", "env",
	"build", "dist", ".next", ".nuxt", "target",

	// version control
	".git", ".svn", ".hg",

	// other hidden/system
	".cache", ".config", ".vscode", ".idea",
}

// DefaultDirs returns a copy of the static exclusion set.
func DefaultDirs() []string {
	out := make([]string, len(defaultDirs))
	copy(out, defaultDirs)
	return out
}

// Policy is an immutable directory exclusion predicate.
type Policy struct {
	names    map[string]struct{}
	patterns []*regexp.Regexp
}

// NewPolicy builds a policy over the static exclusion set plus extra names.
func NewPolicy(extraNames ...string) *Policy {
	p := &Policy{names: make(map[string]struct{}, len(defaultDirs)+len(extraNames))}
	for _, n := range defaultDirs {
		p.names[n] = struct{}{}
	}
	for _, n := range extraNames {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			p.names[n] = struct{}{}
		}
	}
	return p
}

// Default is the policy over the static exclusion set only.
var Default = NewPolicy()

// WithPatterns returns a copy of p that additionally excludes any path
// matching one of the regular expressions.
func (p *Policy) WithPatterns(patterns ...string) (*Policy, error) {
	next := &Policy{names: p.names}
	next.patterns = append(next.patterns, p.patterns...)
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		next.patterns = append(next.patterns, re)
	}
	return next, nil
}

// ShouldExclude reports whether the directory at path must be pruned.
// It looks only at the path string: the leaf is excluded when hidden or
// listed, and so is anything below a listed ancestor.
func (p *Policy) ShouldExclude(path string) bool {
	parts := Split(path)
	if len(parts) == 0 {
		return false
	}

	name := parts[len(parts)-1]
	if strings.HasPrefix(name, ".") && name != "." && name != ".." {
		return true
	}

	for _, part := range parts {
		if _, ok := p.names[strings.ToLower(part)]; ok {
			return true
		}
	}

	return p.MatchPattern(path)
}

// MatchPattern reports whether path matches one of the extra patterns.
func (p *Policy) MatchPattern(path string) bool {
	for _, re := range p.patterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// IsListed reports whether name is in the exclusion set, ignoring case.
func (p *Policy) IsListed(name string) bool {
	_, ok := p.names[strings.ToLower(name)]
	return ok
}

// Split breaks a path into its components, accepting both slash styles so
// that paths from another platform are judged the same way.
func Split(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	})
}
