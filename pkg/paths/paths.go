// Package paths provides centralized path handling for revdiff.
// It implements XDG Base Directory specification compliance for
// configuration, state and log file locations.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for revdiff
	EnvConfigDir = "REVDIFF_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for revdiff
	EnvStateDir = "REVDIFF_STATE_DIR"
)

// AppDirName is the directory name for revdiff-specific files
const AppDirName = "revdiff"

// ConfigFileName is the name of the user configuration file
const ConfigFileName = "revdiff.toml"

// ConfigDir returns the directory holding the user configuration file.
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.ConfigHome, AppDirName)
}

// ConfigFile returns the full path of the user configuration file.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// StateDir returns the directory where revdiff keeps state, such as logs.
func StateDir() string {
	if dir := os.Getenv(EnvStateDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.StateHome, AppDirName)
}
