package config

import (
	"os"
	"path/filepath"
)

// GetConfigPath returns $CLICA_CONFIG, or ~/.clica/config.
func GetConfigPath() (string, error) {
	if configPath := os.Getenv("CLICA_CONFIG"); configPath != "" {
		return configPath, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".clica", "config"), nil
}
