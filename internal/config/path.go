// Package config holds the viper-backed settings shared by the spice commands.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dir returns the directory searched for config.yaml, $HOME/.config/spice.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "spice"), nil
}

// ExpandPath resolves $VARs and a leading ~ in a user-supplied path.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}

	path = os.ExpandEnv(path)
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}
