package snap

import (
	"context"
	"io"
	"time"
)

// BackupInfo describes one stored backup item.
type BackupInfo struct {
	Name     string
	Size     int64
	Modified time.Time
}

// Vault provides off-machine storage for database backups.
// All operations use io.Reader/io.Writer for streaming.
type Vault interface {
	// Name returns the configured vault name.
	Name() string

	// PutBackup stores a named backup item for a specific host.
	// size is the number of bytes that will be read from r.
	// version is stored alongside the item and must increase between uploads.
	PutBackup(ctx context.Context, hostID, name string, r io.Reader, size int64, version int64) error

	// GetBackup retrieves a named backup item for a host and writes it to w.
	// Returns an error wrapping ErrNotFound if nothing is stored under name.
	GetBackup(ctx context.Context, hostID, name string, w io.Writer) error

	// GetBackupVersion returns the stored version for a named item on a host.
	// Returns 0 if nothing has been stored.
	GetBackupVersion(ctx context.Context, hostID, name string) (int64, error)

	// ListBackups returns the items stored for a host, sorted by name.
	ListBackups(ctx context.Context, hostID string) ([]BackupInfo, error)

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup(ctx context.Context) error
}
