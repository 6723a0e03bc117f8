package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func boolp(b bool) *bool { return &b }

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := NewConfig("test-host-abc", "/home/user/.local/share/ccsnap")
	original.Scan.Placeholders = map[string]string{"PROJECT_DIR": "/work/repo"}
	original.Scan.Paths = append(original.Scan.Paths, PathConfig{
		Category: "custom", Name: "Disabled", Template: "/tmp/x", Enabled: boolp(false),
	})
	original.Vaults = append(original.Vaults, VaultConfig{
		Type: "s3", Name: "offsite", S3Bucket: "backups", S3Prefix: "ccsnap", S3Region: "eu-west-1",
	})

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.HostID != original.HostID {
		t.Errorf("HostID = %q, want %q", got.HostID, original.HostID)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.Log != original.Log {
		t.Errorf("Log = %+v, want %+v", got.Log, original.Log)
	}
	if got.Database != original.Database {
		t.Errorf("Database = %+v, want %+v", got.Database, original.Database)
	}
	if len(got.Scan.Paths) != len(original.Scan.Paths) {
		t.Fatalf("len(Scan.Paths) = %d, want %d", len(got.Scan.Paths), len(original.Scan.Paths))
	}
	last := got.Scan.Paths[len(got.Scan.Paths)-1]
	if last.Enabled == nil || *last.Enabled {
		t.Errorf("last path Enabled = %v, want false", last.Enabled)
	}
	if got.Scan.Paths[0].Enabled != nil {
		t.Errorf("first path Enabled = %v, want unset", *got.Scan.Paths[0].Enabled)
	}
	if got.Scan.Placeholders["PROJECT_DIR"] != "/work/repo" {
		t.Errorf("Scan.Placeholders = %v", got.Scan.Placeholders)
	}
	if got.Scan.MaxContentSize != DefaultMaxContentSize {
		t.Errorf("Scan.MaxContentSize = %d, want %d", got.Scan.MaxContentSize, DefaultMaxContentSize)
	}
	if len(got.Vaults) != 2 {
		t.Fatalf("len(Vaults) = %d, want 2", len(got.Vaults))
	}
	if got.Vaults[1] != original.Vaults[1] {
		t.Errorf("Vaults[1] = %+v, want %+v", got.Vaults[1], original.Vaults[1])
	}
	if got.Encryption != original.Encryption {
		t.Errorf("Encryption = %+v, want %+v", got.Encryption, original.Encryption)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("host-1", "/data/ccsnap")

	if cfg.HostID != "host-1" {
		t.Errorf("HostID = %q, want %q", cfg.HostID, "host-1")
	}
	if cfg.LogDir != filepath.Join("/data/ccsnap", "log") {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if cfg.Database.Type != "sqlite" || cfg.Database.DataDir != filepath.Join("/data/ccsnap", "data") {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if len(cfg.Scan.Paths) != 17 {
		t.Errorf("len(Scan.Paths) = %d, want 17", len(cfg.Scan.Paths))
	}
	if cfg.Encryption.PublicKeyPath != filepath.Join("/data/ccsnap", "keys", "ccsnap.pub") {
		t.Errorf("Encryption.PublicKeyPath = %q", cfg.Encryption.PublicKeyPath)
	}
}

func TestScanConfig_Templates(t *testing.T) {
	s := ScanConfig{Paths: []PathConfig{
		{Category: "a", Name: "default", Template: "/a"},
		{Category: "b", Name: "on", Template: "/b", Enabled: boolp(true)},
		{Category: "c", Name: "off", Template: "/c", Enabled: boolp(false)},
	}}

	got := s.Templates()
	want := []bool{true, true, false}
	for i, tmpl := range got {
		if tmpl.Enabled != want[i] {
			t.Errorf("Templates()[%d].Enabled = %v, want %v", i, tmpl.Enabled, want[i])
		}
	}
	if got[2].Template != "/c" || got[2].Category != "c" {
		t.Errorf("Templates()[2] = %+v", got[2])
	}
}

func TestDurations(t *testing.T) {
	tests := []struct {
		name    string
		fn      func() (time.Duration, error)
		want    time.Duration
		wantErr bool
	}{
		{"timeout default", ScanConfig{}.Timeout, DefaultPathTimeout, false},
		{"timeout set", ScanConfig{PathTimeout: "250ms"}.Timeout, 250 * time.Millisecond, false},
		{"timeout invalid", ScanConfig{PathTimeout: "soon"}.Timeout, 0, true},
		{"interval default", ScheduleConfig{}.IntervalDuration, DefaultInterval, false},
		{"interval set", ScheduleConfig{Interval: "15m"}.IntervalDuration, 15 * time.Minute, false},
		{"interval negative", ScheduleConfig{Interval: "-1m"}.IntervalDuration, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "ccsnap.toml")

		if err := Init(path, NewConfig("host-1", "/data")); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.HostID != "host-1" {
			t.Errorf("HostID = %q, want %q", got.HostID, "host-1")
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ccsnap.toml")
		if err := os.WriteFile(path, []byte("host_id = \"keep\"\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		err := Init(path, NewConfig("host-2", "/data"))
		if err == nil || !strings.Contains(err.Error(), "already exists") {
			t.Fatalf("Init() error = %v, want already exists", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.HostID != "keep" {
			t.Errorf("HostID = %q, existing file was overwritten", got.HostID)
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := ReadFromFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("ReadFromFile() expected error for missing file")
		}
	})

	t.Run("invalid toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		if err := os.WriteFile(path, []byte("host_id = [unterminated"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadFromFile(path); err == nil {
			t.Error("ReadFromFile() expected error for invalid toml")
		}
	})

	t.Run("hand written file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ccsnap.toml")
		content := `
host_id = "h"
base_dir = "/data"

[scan]
skip_content = true
parallelism = 2

[[scan.paths]]
category = "settings"
name = "User Settings"
template = "%HOME%/.claude/settings.json"
enabled = false
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		cfg, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if !cfg.Scan.SkipContent || cfg.Scan.Parallelism != 2 {
			t.Errorf("Scan = %+v", cfg.Scan)
		}
		if len(cfg.Scan.Paths) != 1 || cfg.Scan.Templates()[0].Enabled {
			t.Errorf("Scan.Paths = %+v", cfg.Scan.Paths)
		}
	})
}
