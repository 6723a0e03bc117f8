package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ccsnap/internal/snap"
)

const (
	backupName          = "ccsnap.db"
	encryptedBackupName = "ccsnap.db.age"
)

// BackupOptions controls Backup.
type BackupOptions struct {
	Vault   string // empty means the first configured vault
	Encrypt bool
}

// BackupResult describes an uploaded database backup.
type BackupResult struct {
	Vault   string
	Name    string
	Size    int64
	Version int64
}

// Backup copies the database with VACUUM INTO, optionally encrypts the copy,
// and uploads it to a vault. Each upload gets the vault's previous version
// plus one.
func (a *SnapApp) Backup(ctx context.Context, opts BackupOptions) (*BackupResult, error) {
	res, err := a.backup(ctx, opts)
	a.run.Fail(err)
	return res, err
}

func (a *SnapApp) backup(ctx context.Context, opts BackupOptions) (*BackupResult, error) {
	if opts.Encrypt && !a.encryptor.IsConfigured() {
		return nil, errKeysMissing
	}

	v, err := a.openVault(ctx, opts.Vault)
	if err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp("", "ccsnap-backup-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir for db backup: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, backupName)
	if err := a.db.BackupTo(path); err != nil {
		return nil, err
	}

	name := backupName
	if opts.Encrypt {
		name = encryptedBackupName
		encPath := filepath.Join(tmpDir, encryptedBackupName)
		if err := a.encryptFile(path, encPath); err != nil {
			return nil, err
		}
		path = encPath
	}

	prev, err := v.GetBackupVersion(ctx, a.cfg.HostID, name)
	if err != nil {
		return nil, fmt.Errorf("checking backup version: %w", err)
	}
	version := prev + 1

	size, err := uploadFile(ctx, v, a.cfg.HostID, name, path, version)
	if err != nil {
		return nil, err
	}

	a.logger.Info("database backed up", "vault", v.Name(), "name", name, "version", version, "size", size)
	return &BackupResult{Vault: v.Name(), Name: name, Size: size, Version: version}, nil
}

func (a *SnapApp) encryptFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening db backup: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("creating encrypted backup: %w", err)
	}
	if err := a.encryptor.Encrypt(in, out); err != nil {
		out.Close()
		return fmt.Errorf("encrypting db backup: %w", err)
	}
	return out.Close()
}

func uploadFile(ctx context.Context, v snap.Vault, hostID, name, path string, version int64) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening db backup for upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat db backup: %w", err)
	}

	if err := v.PutBackup(ctx, hostID, name, f, info.Size(), version); err != nil {
		return 0, fmt.Errorf("uploading backup to vault %s: %w", v.Name(), err)
	}
	return info.Size(), nil
}

// ListBackups lists this host's backups in a vault.
func (a *SnapApp) ListBackups(ctx context.Context, vaultName string) ([]snap.BackupInfo, error) {
	v, err := a.openVault(ctx, vaultName)
	if err != nil {
		return nil, err
	}
	return v.ListBackups(ctx, a.cfg.HostID)
}

// FetchBackup downloads one of this host's backups into w.
func (a *SnapApp) FetchBackup(ctx context.Context, vaultName, name string, w io.Writer) error {
	v, err := a.openVault(ctx, vaultName)
	if err != nil {
		return err
	}
	return v.GetBackup(ctx, a.cfg.HostID, name, w)
}
