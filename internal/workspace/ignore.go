// internal/workspace/ignore.go
package workspace

import (
	"path"
	"strings"
)

// defaultIgnored are directory names never tracked.
var defaultIgnored = []string{".duck", ".git", "node_modules", "vendor"}

// Ignore decides which workspace paths are left out of commits.
type Ignore struct {
	patterns []string
}

// NewIgnore returns a matcher for the built-in names plus patterns. Patterns
// use path.Match syntax and are tested against every path component and the
// whole slash-separated path.
func NewIgnore(patterns []string) *Ignore {
	all := make([]string, 0, len(defaultIgnored)+len(patterns))
	all = append(all, defaultIgnored...)
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			all = append(all, strings.TrimSuffix(p, "/"))
		}
	}
	return &Ignore{patterns: all}
}

// Match reports whether relPath, relative to the workspace root and
// slash-separated, is ignored.
func (ig *Ignore) Match(relPath string) bool {
	if relPath == "" || relPath == "." {
		return false
	}

	for _, part := range strings.Split(relPath, "/") {
		if part == "" {
			continue
		}
		// hidden files and directories
		if strings.HasPrefix(part, ".") {
			return true
		}
		if ig.matchPattern(part) {
			return true
		}
	}

	return ig.matchPattern(relPath)
}

func (ig *Ignore) matchPattern(name string) bool {
	for _, p := range ig.patterns {
		if ok, err := path.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
