package migrations

import (
	"database/sql"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	tables := []string{
		"snapshots", "content_entries", "snapshot_paths",
		"snapshot_changes", "tags", "annotations", "schema_migrations",
	}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestCheckDBMigrationStatus(t *testing.T) {
	t.Run("fresh database needs migration", func(t *testing.T) {
		db := openTestDB(t)

		err := CheckDBMigrationStatus(db)
		if err == nil {
			t.Fatal("CheckDBMigrationStatus() expected error for fresh database, got nil")
		}
		if err.Error() != "database has no schema version (needs migration)" {
			t.Errorf("CheckDBMigrationStatus() error = %q, want error about needing migration", err.Error())
		}
	})

	t.Run("current after migration", func(t *testing.T) {
		db := openTestDB(t)
		if err := MigrateUp(db); err != nil {
			t.Fatalf("MigrateUp() failed: %v", err)
		}
		if err := CheckDBMigrationStatus(db); err != nil {
			t.Errorf("CheckDBMigrationStatus() after migration returned error: %v", err)
		}
	})
}

func TestGetStatus(t *testing.T) {
	db := openTestDB(t)

	before, err := GetStatus(db)
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if before.Version != 0 || before.Current() {
		t.Errorf("GetStatus() before migration = %+v, want version 0 and not current", before)
	}
	if before.Latest == 0 {
		t.Error("Latest = 0, want at least one embedded migration")
	}
	if !strings.Contains(before.String(), "empty") {
		t.Errorf("String() = %q, want it to mention empty", before.String())
	}

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	after, err := GetStatus(db)
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if !after.Current() {
		t.Errorf("GetStatus() after migration = %+v, want current", after)
	}
	if after.Version != before.Latest {
		t.Errorf("Version = %d, want %d", after.Version, before.Latest)
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("First MigrateUp() failed: %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Errorf("Second MigrateUp() failed: %v (should be idempotent)", err)
	}
	if err := CheckDBMigrationStatus(db); err != nil {
		t.Errorf("CheckDBMigrationStatus() after double migration returned error: %v", err)
	}
}

func TestSchema_Constraints(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	insertSnapshot := `INSERT INTO snapshots (id, snapshot_time, content_hash, trigger_type, is_baseline)
		VALUES (?, datetime('now'), 'h', ?, 1)`

	if _, err := db.Exec(insertSnapshot, "snap-1", "manual"); err != nil {
		t.Fatalf("inserting snapshot: %v", err)
	}

	tests := []struct {
		name  string
		query string
		args  []any
	}{
		{
			name:  "unknown trigger type",
			query: insertSnapshot,
			args:  []any{"snap-2", "cron"},
		},
		{
			name: "path for missing snapshot",
			query: `INSERT INTO snapshot_paths (snapshot_id, position, category, name, path_template, resolved_path, path_exists)
				VALUES ('nope', 0, 'settings', 'User Settings', '%HOME%/x', '/x', 0)`,
		},
		{
			name: "path with unknown content",
			query: `INSERT INTO snapshot_paths (snapshot_id, position, category, name, path_template, resolved_path, path_exists, path_type, content_ref)
				VALUES ('snap-1', 0, 'settings', 'User Settings', '%HOME%/x', '/x', 1, 'file', 'deadbeef')`,
		},
		{
			name:  "negative reference count",
			query: `INSERT INTO content_entries (content_hash, content, size_bytes, reference_count, first_captured_at) VALUES ('h', x'00', 1, -1, datetime('now'))`,
		},
		{
			name:  "unknown change type",
			query: `INSERT INTO snapshot_changes (snapshot_id, change_type, category, name) VALUES ('snap-1', 'renamed', 'c', 'n')`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := db.Exec(tt.query, tt.args...); err == nil {
				t.Error("expected constraint violation, but insert succeeded")
			}
		})
	}

	t.Run("duplicate tag name on one snapshot", func(t *testing.T) {
		insertTag := `INSERT INTO tags (id, snapshot_id, tag_name, created_at) VALUES (?, 'snap-1', 'release', datetime('now'))`
		if _, err := db.Exec(insertTag, "tag-1"); err != nil {
			t.Fatalf("inserting first tag: %v", err)
		}
		if _, err := db.Exec(insertTag, "tag-2"); err == nil {
			t.Error("expected unique constraint violation for duplicate tag, but insert succeeded")
		}
	})
}

func TestSchema_DeleteCascades(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	stmts := []string{
		`INSERT INTO snapshots (id, snapshot_time, content_hash, trigger_type, is_baseline) VALUES ('s', datetime('now'), 'h', 'manual', 1)`,
		`INSERT INTO snapshot_paths (snapshot_id, position, category, name, path_template, resolved_path, path_exists) VALUES ('s', 0, 'c', 'n', 't', '/p', 0)`,
		`INSERT INTO snapshot_changes (snapshot_id, change_type, category, name) VALUES ('s', 'added', 'c', 'n')`,
		`INSERT INTO tags (id, snapshot_id, tag_name, created_at) VALUES ('t', 's', 'x', datetime('now'))`,
		`INSERT INTO annotations (id, snapshot_id, annotation_text, created_at) VALUES ('a', 's', 'note', datetime('now'))`,
		`DELETE FROM snapshots WHERE id = 's'`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("Exec(%q) error = %v", stmt, err)
		}
	}

	for _, table := range []string{"snapshot_paths", "snapshot_changes", "tags", "annotations"} {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Fatalf("counting %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s has %d rows after snapshot delete, want 0", table, n)
		}
	}
}

// openTestDB opens an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	return db
}
