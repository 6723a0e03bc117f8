package testutil

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"ccsnap/internal/snap"
)

// MockFile represents a file or directory in the mock filesystem.
type MockFile struct {
	Content     []byte
	Permissions fs.FileMode
	ModTime     time.Time
	IsDirectory bool
	// Stat data - set once when the entry is created
	Atime time.Time
	Btime time.Time
}

// MockFilesystemManager is an in-memory filesystem for testing.
// Paths are used verbatim as keys. Safe for concurrent use.
type MockFilesystemManager struct {
	mu         sync.RWMutex
	files      map[string]*MockFile
	errors     map[string]error
	readErrors map[string]error
	panics     map[string]any
	delays     map[string]time.Duration
	modTime    time.Time
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files:      make(map[string]*MockFile),
		errors:     make(map[string]error),
		readErrors: make(map[string]error),
		panics:     make(map[string]any),
		delays:     make(map[string]time.Duration),
		modTime:    time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC),
	}
}

// AddFile adds or replaces a file in the mock filesystem.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = &MockFile{
		Content:     content,
		Permissions: 0644,
		ModTime:     m.modTime,
		Atime:       m.modTime,
		Btime:       m.modTime,
	}
}

// AddDirectory adds a directory to the mock filesystem. Its entries are the
// files and directories added directly beneath it.
func (m *MockFilesystemManager) AddDirectory(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = &MockFile{
		Permissions: 0755,
		ModTime:     m.modTime,
		IsDirectory: true,
		Atime:       m.modTime,
		Btime:       m.modTime,
	}
}

// Remove deletes an entry.
func (m *MockFilesystemManager) Remove(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
}

// SetError makes every operation on path fail with err.
func (m *MockFilesystemManager) SetError(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[path] = err
}

// SetReadError makes ReadFile on path fail with err while Stat still
// succeeds, as for a file without read permission.
func (m *MockFilesystemManager) SetReadError(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErrors[path] = err
}

// SetPanic makes Stat on path panic with v.
func (m *MockFilesystemManager) SetPanic(path string, v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panics[path] = v
}

// SetDelay makes Stat on path sleep for d before answering.
func (m *MockFilesystemManager) SetDelay(path string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[path] = d
}

func (m *MockFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	m.mu.RLock()
	delay := m.delays[path]
	p, shouldPanic := m.panics[path]
	m.mu.RUnlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if shouldPanic {
		panic(p)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errors[path]; err != nil {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: err}
	}
	file, ok := m.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	return &mockFileInfo{
		name:     filepath.Base(path),
		size:     int64(len(file.Content)),
		mode:     file.Permissions,
		modTime:  file.ModTime,
		isDir:    file.IsDirectory,
		mockFile: file,
	}, nil
}

func (m *MockFilesystemManager) ReadFile(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errors[path]; err != nil {
		return nil, &fs.PathError{Op: "read", Path: path, Err: err}
	}
	if err := m.readErrors[path]; err != nil {
		return nil, &fs.PathError{Op: "open", Path: path, Err: err}
	}
	file, ok := m.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: path, Err: fs.ErrNotExist}
	}
	if file.IsDirectory {
		return nil, fmt.Errorf("cannot read directory: %s", path)
	}
	out := make([]byte, len(file.Content))
	copy(out, file.Content)
	return out, nil
}

func (m *MockFilesystemManager) CountEntries(path string) (int, error) {
	return len(m.children(path)), nil
}

func (m *MockFilesystemManager) Glob(pattern string) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for p := range m.files {
		if ok, _ := filepath.Match(pattern, p); ok {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MockFilesystemManager) Times(info fs.FileInfo) snap.FileTimes {
	times := snap.FileTimes{Modified: info.ModTime()}
	if mf, ok := info.Sys().(*MockFile); ok {
		atime, btime := mf.Atime, mf.Btime
		times.Accessed = &atime
		times.Created = &btime
	}
	return times
}

func (m *MockFilesystemManager) children(dir string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	prefix := strings.TrimSuffix(dir, "/") + "/"
	var out []string
	for p := range m.files {
		rest, ok := strings.CutPrefix(p, prefix)
		if ok && rest != "" && !strings.Contains(rest, "/") {
			out = append(out, p)
		}
	}
	return out
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name     string
	size     int64
	mode     fs.FileMode
	modTime  time.Time
	isDir    bool
	mockFile *MockFile
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return m.mockFile }

// Compile-time check
var _ snap.FilesystemManager = (*MockFilesystemManager)(nil)
