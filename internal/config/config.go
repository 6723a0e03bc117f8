package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"ccsnap/internal/model"
)

const (
	DefaultParallelism    = 4
	DefaultPathTimeout    = 10 * time.Second
	DefaultMaxContentSize = 10 << 20 // 10 MiB
	DefaultInterval       = time.Hour
	DefaultListen         = "127.0.0.1:8765"
)

// Config represents the main configuration for ccsnap.
type Config struct {
	HostID     string           `toml:"host_id"`
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Log        LogConfig        `toml:"log"`
	Database   DatabaseConfig   `toml:"database"`
	Scan       ScanConfig       `toml:"scan"`
	API        APIConfig        `toml:"api"`
	Schedule   ScheduleConfig   `toml:"schedule"`
	Vaults     []VaultConfig    `toml:"vaults"`
	Encryption EncryptionConfig `toml:"encryption"`
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	Level      string `toml:"level"` // debug, info, warn or error
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// DatabaseConfig represents configuration for the snapshot database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// ScanConfig controls what is scanned and how.
type ScanConfig struct {
	SkipContent    bool   `toml:"skip_content"`
	Parallelism    int    `toml:"parallelism"`
	PathTimeout    string `toml:"path_timeout"`     // Go duration, e.g. "10s"
	MaxContentSize int64  `toml:"max_content_size"` // bytes; larger files are recorded without content

	// Ignore lists glob patterns for entry names left out of directory counts.
	Ignore []string `toml:"ignore,omitempty"`

	// Placeholders overrides the platform defaults for %VAR% substitution.
	Placeholders map[string]string `toml:"placeholders,omitempty"`

	Paths []PathConfig `toml:"paths"`
}

// PathConfig is one configured location. Enabled defaults to true.
type PathConfig struct {
	Category string `toml:"category"`
	Name     string `toml:"name"`
	Template string `toml:"template"`
	Enabled  *bool  `toml:"enabled,omitempty"`
}

// APIConfig controls the REST server.
type APIConfig struct {
	Listen string `toml:"listen"`
}

// ScheduleConfig controls `ccsnap watch`.
type ScheduleConfig struct {
	Interval string `toml:"interval"` // Go duration, e.g. "1h"
}

// VaultConfig represents configuration for a backup vault.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type VaultConfig struct {
	Type string `toml:"type"` // "memory", "s3", or "filesystem"
	Name string `toml:"name"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"` // for S3-compatible stores
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSVaultRoot string `toml:"fs_vault_root,omitempty"`
}

// EncryptionConfig holds paths to the age key pair used for exports and backups.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default) or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
	Armor          bool   `toml:"armor"` // ASCII-armored output for exports
}

// NewConfig creates a new Config with the default locations and settings.
func NewConfig(hostID, baseDir string) *Config {
	return &Config{
		HostID:  hostID,
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "data"),
		},
		Scan: ScanConfig{
			Parallelism:    DefaultParallelism,
			PathTimeout:    DefaultPathTimeout.String(),
			MaxContentSize: DefaultMaxContentSize,
			Ignore:         []string{".DS_Store", "Thumbs.db", "desktop.ini"},
			Paths:          DefaultPaths(),
		},
		API:      APIConfig{Listen: DefaultListen},
		Schedule: ScheduleConfig{Interval: DefaultInterval.String()},
		Vaults: []VaultConfig{{
			Type:        "filesystem",
			Name:        "local",
			FSVaultRoot: filepath.Join(baseDir, "vault"),
		}},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "ccsnap.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "ccsnap.key"),
		},
	}
}

// Templates converts the configured paths into path templates, in order.
func (s ScanConfig) Templates() []model.PathTemplate {
	out := make([]model.PathTemplate, len(s.Paths))
	for i, p := range s.Paths {
		out[i] = model.PathTemplate{
			Category: p.Category,
			Name:     p.Name,
			Template: p.Template,
			Enabled:  p.Enabled == nil || *p.Enabled,
		}
	}
	return out
}

// Timeout returns the per-path scan timeout, or the default when unset.
func (s ScanConfig) Timeout() (time.Duration, error) {
	return parseDuration("scan.path_timeout", s.PathTimeout, DefaultPathTimeout)
}

// IntervalDuration returns the watch interval, or the default when unset.
func (s ScheduleConfig) IntervalDuration() (time.Duration, error) {
	d, err := parseDuration("schedule.interval", s.Interval, DefaultInterval)
	if err == nil && d <= 0 {
		return 0, fmt.Errorf("schedule.interval must be positive")
	}
	return d, err
}

func parseDuration(field, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	return d, nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to a new config file at path. It refuses to overwrite
// an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
