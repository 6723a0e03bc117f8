package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"ccsnap/internal/snap"
)

// FileSystemVault stores backups as files in a directory tree:
//
//	<root>/
//	  <hostID>/
//	    <name>           (backup payload)
//	    <name>.version   (version marker)
type FileSystemVault struct {
	name string
	root string
}

// NewFileSystemVault creates a new filesystem vault rooted at the given path.
func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create vault root: %w", err)
	}
	return &FileSystemVault{name: name, root: root}, nil
}

func (v *FileSystemVault) Name() string { return v.name }

// PutBackup writes the payload and then its version marker.
func (v *FileSystemVault) PutBackup(ctx context.Context, hostID, name string, r io.Reader, size int64, version int64) error {
	if err := validateKey(hostID, name); err != nil {
		return err
	}
	hostDir := filepath.Join(v.root, hostID)
	if err := os.MkdirAll(hostDir, 0755); err != nil {
		return fmt.Errorf("failed to create host directory: %w", err)
	}

	if err := writeFileAtomic(filepath.Join(hostDir, name), r, size); err != nil {
		return err
	}

	versionData := strconv.FormatInt(version, 10)
	return writeFileAtomic(filepath.Join(hostDir, name+versionSuffix), strings.NewReader(versionData), int64(len(versionData)))
}

// GetBackup retrieves a named backup item and writes it to w.
func (v *FileSystemVault) GetBackup(ctx context.Context, hostID, name string, w io.Writer) error {
	if err := validateKey(hostID, name); err != nil {
		return err
	}
	f, err := os.Open(filepath.Join(v.root, hostID, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("backup %q for host %s: %w", name, hostID, snap.ErrNotFound)
		}
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}
	return nil
}

// GetBackupVersion returns the version marker for a named item.
// Returns 0 if no version file exists.
func (v *FileSystemVault) GetBackupVersion(ctx context.Context, hostID, name string) (int64, error) {
	if err := validateKey(hostID, name); err != nil {
		return 0, err
	}
	data, err := os.ReadFile(filepath.Join(v.root, hostID, name+versionSuffix))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading version file: %w", err)
	}

	version, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version: %w", err)
	}
	return version, nil
}

// ListBackups returns the payload files stored for hostID.
func (v *FileSystemVault) ListBackups(ctx context.Context, hostID string) ([]snap.BackupInfo, error) {
	entries, err := os.ReadDir(filepath.Join(v.root, hostID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing backups: %w", err)
	}

	var out []snap.BackupInfo
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), versionSuffix) || strings.HasPrefix(e.Name(), ".tmp-") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat backup %s: %w", e.Name(), err)
		}
		out = append(out, snap.BackupInfo{Name: e.Name(), Size: info.Size(), Modified: info.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ValidateSetup verifies that the vault root is a writable directory.
func (v *FileSystemVault) ValidateSetup(ctx context.Context) error {
	info, err := os.Stat(v.root)
	if err != nil {
		return fmt.Errorf("vault root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("vault root is not a directory: %s", v.root)
	}

	probe, err := os.CreateTemp(v.root, ".tmp-probe-*")
	if err != nil {
		return fmt.Errorf("vault root not writable: %w", err)
	}
	probe.Close()
	return os.Remove(probe.Name())
}

// writeFileAtomic writes data from r to destPath via a temp file and rename.
func writeFileAtomic(destPath string, r io.Reader, expectedSize int64) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemVault implements snap.Vault interface
var _ snap.Vault = (*FileSystemVault)(nil)
