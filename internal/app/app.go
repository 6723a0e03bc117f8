package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"time"

	"ccsnap/internal/api"
	"ccsnap/internal/config"
	"ccsnap/internal/database"
	"ccsnap/internal/database/migrations"
	"ccsnap/internal/encryption"
	"ccsnap/internal/export"
	"ccsnap/internal/fs"
	"ccsnap/internal/model"
	"ccsnap/internal/snap"
	"ccsnap/internal/vault"
)

// SnapApp is the application layer between the CLI and SnapService.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw CLI values, and manages the DB lifecycle on Close.
type SnapApp struct {
	cfg       *config.Config
	db        *database.SQLiteDatabase
	encryptor snap.Encryptor
	service   *snap.SnapService
	scan      snap.ScanConfiguration
	host      snap.HostInfo
	logger    *slog.Logger
	logCloser io.Closer
	run       *Run
	clock     snap.Clock
}

// NewSnapApp creates a fully wired SnapApp from the given config.
// command identifies the CLI command being run (e.g. "scan", "serve").
// The caller must call Close when done.
func NewSnapApp(cfg *config.Config, command string) (*SnapApp, error) {
	env, err := currentScanEnv()
	if err != nil {
		return nil, err
	}
	return newSnapApp(cfg, command, env, os.Stderr)
}

func newSnapApp(cfg *config.Config, command string, env scanEnv, stderr io.Writer) (*SnapApp, error) {
	clock := snap.RealClock{}
	run := NewRun(command, clock.Now())

	scan, err := buildScanConfiguration(cfg, env)
	if err != nil {
		return nil, err
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	logger, logCloser, err := newLogger(cfg.Log, cfg.LogDir, run.ID, stderr)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.HostID)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.CheckMigrations(); err != nil {
		db.Close()
		logCloser.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	fsmgr := fs.NewOSFilesystemManager(cfg.Scan.Ignore)
	svc := snap.NewSnapService(db, fsmgr, &slogAdapter{l: logger}, clock, snap.UUIDGenerator{})

	logger.Debug("run started", "command", command)

	return &SnapApp{
		cfg:       cfg,
		db:        db,
		encryptor: enc,
		service:   svc,
		scan:      scan,
		host:      hostInfo(),
		logger:    logger,
		logCloser: logCloser,
		run:       run,
		clock:     clock,
	}, nil
}

// ScanRequest holds the CLI options for a manual scan.
type ScanRequest struct {
	Notes       string
	Tags        []string
	TriggeredBy string
	SkipContent bool
}

// Scan takes a manual snapshot of every configured location.
func (a *SnapApp) Scan(ctx context.Context, req ScanRequest) (*model.Snapshot, error) {
	scan := a.scan
	if req.SkipContent {
		scan.SkipContent = true
	}
	triggeredBy := req.TriggeredBy
	if triggeredBy == "" {
		triggeredBy = a.host.Username
	}

	snapshot, err := a.service.CreateSnapshot(ctx, scan, snap.CreateRequest{
		TriggerType: model.TriggerManual,
		TriggeredBy: triggeredBy,
		Notes:       req.Notes,
		Tags:        req.Tags,
		Host:        a.host,
	})
	a.run.Fail(err)
	return snapshot, err
}

// ListSnapshots returns one page of snapshot summaries.
func (a *SnapApp) ListSnapshots(ctx context.Context, query snap.ListQuery) (*model.Page, error) {
	return a.service.ListSnapshots(ctx, query)
}

// GetSnapshot returns the full snapshot aggregate.
func (a *SnapApp) GetSnapshot(ctx context.Context, id string) (*model.Snapshot, error) {
	return a.service.GetSnapshot(ctx, id)
}

// DeleteSnapshot removes a snapshot.
func (a *SnapApp) DeleteSnapshot(ctx context.Context, id string) error {
	err := a.service.DeleteSnapshot(ctx, id)
	a.run.Fail(err)
	return err
}

// AddTag tags a snapshot as the current user.
func (a *SnapApp) AddTag(ctx context.Context, id, name, tagType, description string) (*model.Tag, error) {
	tag, err := a.service.AddTag(ctx, id, snap.TagRequest{
		Name:        name,
		Type:        tagType,
		Description: description,
		CreatedBy:   a.host.Username,
	})
	a.run.Fail(err)
	return tag, err
}

// AddAnnotation annotates a snapshot as the current user.
func (a *SnapApp) AddAnnotation(ctx context.Context, id, text, annotationType string) (*model.Annotation, error) {
	annotation, err := a.service.AddAnnotation(ctx, id, snap.AnnotationRequest{
		Text:      text,
		Type:      annotationType,
		CreatedBy: a.host.Username,
	})
	a.run.Fail(err)
	return annotation, err
}

// Compare diffs two stored snapshots.
func (a *SnapApp) Compare(ctx context.Context, fromID, toID string) (*snap.Comparison, error) {
	return a.service.CompareSnapshots(ctx, fromID, toID)
}

// GetContent returns a captured file body by its hash.
func (a *SnapApp) GetContent(ctx context.Context, hash string) (*model.ContentEntry, error) {
	return a.service.GetContent(ctx, model.ContentRef(hash))
}

// SweepContent removes unreferenced content entries.
func (a *SnapApp) SweepContent(ctx context.Context) (int64, error) {
	n, err := a.service.SweepContent(ctx)
	a.run.Fail(err)
	return n, err
}

// ExportOptions controls ExportSnapshot.
type ExportOptions struct {
	Format         export.Format
	IncludeContent bool
	Encrypt        bool
}

// ExportSnapshot writes snapshot id to w. With Encrypt set the document is
// encrypted to the configured public key.
func (a *SnapApp) ExportSnapshot(ctx context.Context, id string, w io.Writer, opts ExportOptions) error {
	snapshot, err := a.service.GetSnapshot(ctx, id)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	err = export.Write(ctx, &buf, snapshot, a.service, export.Options{
		Format:         opts.Format,
		IncludeContent: opts.IncludeContent,
		ExportedAt:     a.clock.Now(),
	})
	if err != nil {
		return fmt.Errorf("exporting snapshot: %w", err)
	}

	if opts.Encrypt {
		if !a.encryptor.IsConfigured() {
			return errKeysMissing
		}
		if err := a.encryptor.Encrypt(&buf, w); err != nil {
			return fmt.Errorf("encrypting export: %w", err)
		}
	} else if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	a.logger.Info("snapshot exported", "id", id, "format", string(opts.Format), "encrypted", opts.Encrypt)
	return nil
}

// Watch takes scheduled snapshots until ctx is done. A zero interval uses
// schedule.interval from the config.
func (a *SnapApp) Watch(ctx context.Context, interval time.Duration, onSnapshot func(*model.Snapshot)) error {
	if interval == 0 {
		var err error
		if interval, err = a.cfg.Schedule.IntervalDuration(); err != nil {
			return err
		}
	}
	a.logger.Info("watch started", "interval", interval.String())
	err := a.service.Watch(ctx, a.scan, snap.CreateRequest{
		TriggeredBy: "watch",
		Host:        a.host,
	}, interval, onSnapshot)
	a.run.Fail(err)
	return err
}

// Serve runs the REST API until ctx is done. An empty listen address uses
// api.listen from the config.
func (a *SnapApp) Serve(ctx context.Context, listen string, ready func(net.Addr)) error {
	if listen == "" {
		listen = a.cfg.API.Listen
	}
	if listen == "" {
		listen = config.DefaultListen
	}
	srv := api.NewServer(a.service, api.Options{Scan: a.scan, Host: a.host}, &slogAdapter{l: a.logger})
	err := srv.ListenAndServe(ctx, listen, ready)
	a.run.Fail(err)
	return err
}

// MigrationStatus reports the schema version of the local database.
func (a *SnapApp) MigrationStatus() (migrations.Status, error) {
	return a.db.MigrationStatus()
}

// DatabasePath returns the location of the local database file.
func (a *SnapApp) DatabasePath() string {
	return a.db.Path()
}

// Close closes the database and log file, recording how the run ended.
func (a *SnapApp) Close() error {
	var firstErr error

	if err := a.db.Close(); err != nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}

	a.logger.Debug("run finished",
		"command", a.run.Command,
		"status", a.run.Status,
		"elapsed", a.run.Elapsed(a.clock.Now()).String(),
	)
	if a.logCloser != nil {
		if err := a.logCloser.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}

	return firstErr
}

// openVault returns the vault named name, or the first configured vault
// when name is empty.
func (a *SnapApp) openVault(ctx context.Context, name string) (snap.Vault, error) {
	if len(a.cfg.Vaults) == 0 {
		return nil, fmt.Errorf("no vaults configured")
	}
	for _, vc := range a.cfg.Vaults {
		if name != "" && vc.Name != name {
			continue
		}
		v, err := vault.NewVaultFromConfig(ctx, vc)
		if err != nil {
			return nil, fmt.Errorf("creating vault %q: %w", vc.Name, err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("no vault named %q", name)
}
