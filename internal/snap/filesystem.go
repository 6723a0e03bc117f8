package snap

import (
	"io/fs"
	"time"
)

// FileTimes holds the timestamps that can be extracted from a stat result.
// Accessed and Created are nil when the platform does not report them.
type FileTimes struct {
	Modified time.Time
	Accessed *time.Time
	Created  *time.Time
}

// FilesystemManager provides the read-only filesystem access the scanner needs.
// It abstracts file access to enable testing without touching the real filesystem.
type FilesystemManager interface {
	// Stat returns file info for path, following symlinks.
	Stat(path string) (fs.FileInfo, error)

	// ReadFile returns the full content of the file at path.
	ReadFile(path string) ([]byte, error)

	// CountEntries returns the number of immediate children of a directory.
	CountEntries(path string) (int, error)

	// Glob returns the paths matching pattern, sorted.
	Glob(pattern string) ([]string, error)

	// Times extracts timestamps from info.
	Times(info fs.FileInfo) FileTimes
}
