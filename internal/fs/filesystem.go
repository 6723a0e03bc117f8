package fs

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"ccsnap/internal/snap"
)

// OSFilesystemManager is the real filesystem implementation of FilesystemManager.
// It performs actual filesystem operations using the os package.
type OSFilesystemManager struct {
	ignore *IgnoreMatcher
}

// NewOSFilesystemManager creates a filesystem manager that operates on the real
// filesystem. Directory entries whose names match an ignore pattern are not
// counted.
func NewOSFilesystemManager(ignorePatterns []string) *OSFilesystemManager {
	return &OSFilesystemManager{ignore: NewIgnoreMatcher(ignorePatterns)}
}

// Stat returns file info for path, following symlinks.
func (m *OSFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// ReadFile returns the content of the file at path.
func (m *OSFilesystemManager) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// CountEntries counts the immediate children of a directory.
func (m *OSFilesystemManager) CountEntries(path string) (int, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if !m.ignore.Match(e.Name()) {
			n++
		}
	}
	return n, nil
}

// Glob returns the sorted paths matching pattern.
func (m *OSFilesystemManager) Glob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// Times extracts modification, access and (where the platform records it)
// creation time from info.
func (m *OSFilesystemManager) Times(info fs.FileInfo) snap.FileTimes {
	times := snap.FileTimes{Modified: info.ModTime()}
	platformTimes(info, &times)
	return times
}

// Compile-time check that OSFilesystemManager implements snap.FilesystemManager interface
var _ snap.FilesystemManager = (*OSFilesystemManager)(nil)
