// Package config loads revdiff's layered configuration: built-in
// defaults, then the user's revdiff.toml from the config directory,
// then REVDIFF_* environment variables. Later layers override earlier
// ones key by key.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/revdiff/revdiff/pkg/errors"
	"github.com/revdiff/revdiff/pkg/paths"
)

// envPrefix marks environment variables that carry configuration
const envPrefix = "REVDIFF_"

// Config is the typed view of the merged configuration
type Config struct {
	Backup BackupConfig `koanf:"backup" toml:"backup"`
	Report ReportConfig `koanf:"report" toml:"report"`
}

// BackupConfig holds the backup command's defaults
type BackupConfig struct {
	Force          bool   `koanf:"force" toml:"force"`
	CreateFullPath bool   `koanf:"create_full_path" toml:"create_full_path"`
	RulesFile      string `koanf:"rules_file" toml:"rules_file"`
}

// ReportConfig controls the session report rendering
type ReportConfig struct {
	// Color is auto, always or never
	Color string `koanf:"color" toml:"color"`
}

// Load merges all configuration layers into a typed Config
func Load() (*Config, error) {
	k, err := loadKoanf()
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "cannot decode configuration")
	}
	return &cfg, nil
}

// Default returns the built-in defaults without any user layer
func Default() *Config {
	return &Config{
		Backup: BackupConfig{},
		Report: ReportConfig{Color: "auto"},
	}
}

func loadKoanf() (*koanf.Koanf, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "cannot load built-in defaults")
	}

	userFile := paths.ConfigFile()
	if _, err := os.Stat(userFile); err == nil {
		if err := k.Load(file.Provider(userFile), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot load %s", userFile)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envToKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "cannot load environment overrides")
	}
	return k, nil
}

// envToKey maps REVDIFF_BACKUP_CREATE_FULL_PATH to
// backup.create_full_path: only the first underscore becomes a section
// separator, the rest stay part of the key.
func envToKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, envPrefix))
	return strings.Replace(key, "_", ".", 1)
}
