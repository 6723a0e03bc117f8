package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - CCSNAP_CONFIG_PATH: config file location (default: ~/.config/ccsnap.toml)
//   - CCSNAP_HOME: base directory for ccsnap data (default: ~/.local/share/ccsnap)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

func getConfigPath() (string, error) {
	if path := os.Getenv("CCSNAP_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "ccsnap.toml"), nil
}

// getBaseDir returns the base directory for ccsnap data, checking CCSNAP_HOME
// first, then falling back to the XDG default ~/.local/share/ccsnap.
func getBaseDir() (string, error) {
	if path := os.Getenv("CCSNAP_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "ccsnap"), nil
}
