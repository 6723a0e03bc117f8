package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var migrationFiles embed.FS

// Status describes where a database stands relative to the embedded migrations.
type Status struct {
	Version uint // 0 when no migration has been applied
	Latest  uint
	Dirty   bool
}

// Current reports whether the database is clean and at the latest version.
func (s Status) Current() bool {
	return !s.Dirty && s.Version == s.Latest
}

func (s Status) String() string {
	switch {
	case s.Dirty:
		return fmt.Sprintf("dirty at version %d (a migration failed part way)", s.Version)
	case s.Version == 0:
		return fmt.Sprintf("empty, latest is %d", s.Latest)
	case s.Version < s.Latest:
		return fmt.Sprintf("version %d, %d migration(s) behind %d", s.Version, s.Latest-s.Version, s.Latest)
	case s.Version > s.Latest:
		return fmt.Sprintf("version %d is newer than this binary (%d)", s.Version, s.Latest)
	default:
		return fmt.Sprintf("version %d (current)", s.Version)
	}
}

// GetStatus reads the applied version from db and the latest embedded version.
func GetStatus(db *sql.DB) (Status, error) {
	latest, err := latestVersion()
	if err != nil {
		return Status{}, err
	}

	m, err := newMigrate(db)
	if err != nil {
		return Status{}, err
	}
	// m is not closed: closing it would close db, which the caller owns.

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return Status{}, fmt.Errorf("failed to get database version: %w", err)
	}
	return Status{Version: version, Latest: latest, Dirty: dirty}, nil
}

// CheckDBMigrationStatus returns nil if the database is at the latest
// version and an error describing the mismatch otherwise.
func CheckDBMigrationStatus(db *sql.DB) error {
	status, err := GetStatus(db)
	if err != nil {
		return err
	}
	if status.Version == 0 && !status.Dirty {
		return fmt.Errorf("database has no schema version (needs migration)")
	}
	if !status.Current() {
		return fmt.Errorf("database schema is not current: %s", status)
	}
	return nil
}

// MigrateUp runs all pending migrations. A database that is already current
// is not an error.
func MigrateUp(db *sql.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

func latestVersion() (uint, error) {
	src, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return 0, fmt.Errorf("failed to read migration files: %w", err)
	}
	defer src.Close()
	return lastVersion(src)
}

// lastVersion walks the source from its first migration to its last.
func lastVersion(src source.Driver) (uint, error) {
	v, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("failed to determine latest version: %w", err)
	}
	for {
		next, err := src.Next(v)
		if err != nil {
			return v, nil
		}
		v = next
	}
}
