package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/joho/godotenv"

	"ccsnap/internal/config"
	"ccsnap/internal/snap"
)

const dotenvFile = ".env"

// scanEnv is the machine state placeholder defaults are derived from.
type scanEnv struct {
	goos       string
	home       string
	projectDir string
	getenv     func(string) string
}

func currentScanEnv() (scanEnv, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return scanEnv{}, fmt.Errorf("cannot determine home directory: %w", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		return scanEnv{}, fmt.Errorf("cannot determine working directory: %w", err)
	}
	return scanEnv{goos: runtime.GOOS, home: home, projectDir: wd, getenv: os.Getenv}, nil
}

// buildScanConfiguration turns the [scan] config into the service's scan
// configuration. Placeholder values are layered: platform defaults, then
// <base_dir>/.env, then scan.placeholders.
func buildScanConfiguration(cfg *config.Config, env scanEnv) (snap.ScanConfiguration, error) {
	placeholders := config.DefaultPlaceholders(env.goos, env.home, env.projectDir, env.getenv)

	if cfg.BaseDir != "" {
		dotenv, err := readDotenv(filepath.Join(cfg.BaseDir, dotenvFile))
		if err != nil {
			return snap.ScanConfiguration{}, err
		}
		for k, v := range dotenv {
			placeholders[k] = v
		}
	}
	for k, v := range cfg.Scan.Placeholders {
		placeholders[k] = v
	}

	timeout, err := cfg.Scan.Timeout()
	if err != nil {
		return snap.ScanConfiguration{}, &snap.ConfigError{Reason: err.Error()}
	}

	return snap.ScanConfiguration{
		Templates:      cfg.Scan.Templates(),
		Placeholders:   placeholders,
		SkipContent:    cfg.Scan.SkipContent,
		Parallelism:    cfg.Scan.Parallelism,
		PathTimeout:    timeout,
		MaxContentSize: cfg.Scan.MaxContentSize,
	}, nil
}

// readDotenv parses path without touching the process environment.
// A missing file yields no values.
func readDotenv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return values, nil
}
