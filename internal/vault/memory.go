package vault

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"ccsnap/internal/snap"
)

type memoryItem struct {
	data     []byte
	version  int64
	modified time.Time
}

// MemoryVault keeps backups in memory, making it useful for testing.
// This implementation is safe for concurrent use.
type MemoryVault struct {
	name  string
	items map[string]map[string]*memoryItem // hostID -> name -> item
	mu    sync.RWMutex
}

// NewMemoryVault creates a new in-memory vault with the given name.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:  name,
		items: make(map[string]map[string]*memoryItem),
	}
}

func (m *MemoryVault) Name() string { return m.name }

// PutBackup stores a named backup item for a specific host.
func (m *MemoryVault) PutBackup(ctx context.Context, hostID, name string, r io.Reader, size int64, version int64) error {
	if err := validateKey(hostID, name); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	host, ok := m.items[hostID]
	if !ok {
		host = make(map[string]*memoryItem)
		m.items[hostID] = host
	}
	host[name] = &memoryItem{data: data, version: version, modified: time.Now()}
	return nil
}

// GetBackup retrieves a named backup item for a specific host.
func (m *MemoryVault) GetBackup(ctx context.Context, hostID, name string, w io.Writer) error {
	m.mu.RLock()
	item, ok := m.items[hostID][name]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("backup %q for host %s: %w", name, hostID, snap.ErrNotFound)
	}

	if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

// GetBackupVersion returns the version for a named item on a host.
// Returns 0 if nothing has been stored for this host/name.
func (m *MemoryVault) GetBackupVersion(ctx context.Context, hostID, name string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if item, ok := m.items[hostID][name]; ok {
		return item.version, nil
	}
	return 0, nil
}

// ListBackups returns the items stored for hostID.
func (m *MemoryVault) ListBackups(ctx context.Context, hostID string) ([]snap.BackupInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]snap.BackupInfo, 0, len(m.items[hostID]))
	for name, item := range m.items[hostID] {
		out = append(out, snap.BackupInfo{Name: name, Size: int64(len(item.data)), Modified: item.modified})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ValidateSetup always succeeds for in-memory vault.
func (m *MemoryVault) ValidateSetup(ctx context.Context) error {
	return nil
}

// Compile-time check that MemoryVault implements snap.Vault interface
var _ snap.Vault = (*MemoryVault)(nil)
