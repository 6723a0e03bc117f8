package fs

import (
	"path/filepath"
	"strings"
)

// IgnoreMatcher checks entry names against a set of glob patterns.
// Patterns are matched against the base name only.
type IgnoreMatcher struct {
	patterns []string
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings.
// Blank entries and entries starting with '#' are skipped, as are patterns
// that filepath.Match rejects.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []string
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		if _, err := filepath.Match(raw, ""); err != nil {
			continue
		}
		patterns = append(patterns, raw)
	}
	return &IgnoreMatcher{patterns: patterns}
}

// Match reports whether an entry with this name should be ignored.
// A full path may be passed; only its base name is considered.
func (m *IgnoreMatcher) Match(name string) bool {
	base := filepath.Base(name)
	for _, p := range m.patterns {
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
	}
	return false
}
