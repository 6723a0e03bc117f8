package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ccsnap/internal/database/migrations"
	"ccsnap/internal/database/sqlc"
	"ccsnap/internal/model"
	"ccsnap/internal/snap"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the snap.Database interface using SQLite.
type SQLiteDatabase struct {
	db      *sql.DB
	queries *sqlc.Queries
	clock   snap.Clock
	path    string
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
// clock stamps first_captured_at on new content; nil means the real clock.
func NewSQLiteDatabase(path string, clock snap.Clock) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	s := NewSQLiteDatabaseFromDB(db, clock)
	s.path = path
	return s, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB, clock snap.Clock) *SQLiteDatabase {
	if clock == nil {
		clock = snap.RealClock{}
	}
	return &SQLiteDatabase{
		db:      db,
		queries: sqlc.New(db),
		clock:   clock,
	}
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// This is exported for use in tools and tests that need a properly configured SQLite connection.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer, and every connection to ":memory:" is a
	// separate database. One connection serves both cases.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// InTx runs fn inside one transaction. All queries issued through the
// writer share the transaction's connection.
func (s *SQLiteDatabase) InTx(ctx context.Context, fn func(tx snap.SnapshotWriter) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	w := &txWriter{queries: s.queries.WithTx(tx), clock: s.clock}
	if err := fn(w); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Snapshot reads

func (s *SQLiteDatabase) GetSnapshot(ctx context.Context, id string) (*model.Snapshot, error) {
	snapshot, err := loadSnapshot(ctx, s.queries, id)
	if err != nil || snapshot == nil {
		return nil, err
	}

	changes, err := s.queries.GetSnapshotChanges(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot changes: %w", err)
	}
	for i := range changes {
		snapshot.Changes = append(snapshot.Changes, changeFromRow(&changes[i]))
	}

	if snapshot.Tags, err = loadTags(ctx, s.queries, id); err != nil {
		return nil, err
	}

	annotations, err := s.queries.GetAnnotationsBySnapshotID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading annotations: %w", err)
	}
	for i := range annotations {
		snapshot.Annotations = append(snapshot.Annotations, annotationFromRow(&annotations[i]))
	}

	return snapshot, nil
}

// loadSnapshot returns the snapshot row with its paths, or nil if not found.
func loadSnapshot(ctx context.Context, q *sqlc.Queries, id string) (*model.Snapshot, error) {
	row, err := q.GetSnapshotByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding snapshot: %w", err)
	}
	return withPaths(ctx, q, &row)
}

func withPaths(ctx context.Context, q *sqlc.Queries, row *sqlc.Snapshot) (*model.Snapshot, error) {
	snapshot := snapshotFromRow(row)
	paths, err := q.GetSnapshotPaths(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot paths: %w", err)
	}
	for i := range paths {
		snapshot.Paths = append(snapshot.Paths, pathFromRow(&paths[i]))
	}
	return snapshot, nil
}

func loadTags(ctx context.Context, q *sqlc.Queries, snapshotID string) ([]*model.Tag, error) {
	rows, err := q.GetTagsBySnapshotID(ctx, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("loading tags: %w", err)
	}
	tags := make([]*model.Tag, len(rows))
	for i := range rows {
		tags[i] = tagFromRow(&rows[i])
	}
	return tags, nil
}

// Content

func (s *SQLiteDatabase) GetContent(ctx context.Context, ref model.ContentRef) (*model.ContentEntry, error) {
	return getContent(ctx, s.queries, ref)
}

func (s *SQLiteDatabase) SweepContent(ctx context.Context) (int64, error) {
	n, err := s.queries.DeleteOrphanedContent(ctx)
	if err != nil {
		return 0, fmt.Errorf("deleting orphaned content: %w", err)
	}
	return n, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// MigrationStatus reports the applied and latest schema versions.
func (s *SQLiteDatabase) MigrationStatus() (migrations.Status, error) {
	return migrations.GetStatus(s.db)
}

// MigrateUp applies any pending migrations.
func (s *SQLiteDatabase) MigrateUp() error {
	return migrations.MigrateUp(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements snap.Database interface
var _ snap.Database = (*SQLiteDatabase)(nil)
