package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revdiff/revdiff/pkg/paths"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(paths.EnvConfigDir, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Backup.Force)
	assert.False(t, cfg.Backup.CreateFullPath)
	assert.Empty(t, cfg.Backup.RulesFile)
	assert.Equal(t, "auto", cfg.Report.Color)
}

func TestLoadUserFileOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(paths.EnvConfigDir, dir)
	content := "[backup]\nforce = true\nrules_file = \"/etc/revdiff/rules.yaml\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, paths.ConfigFileName), []byte(content), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Backup.Force)
	assert.Equal(t, "/etc/revdiff/rules.yaml", cfg.Backup.RulesFile)
	// untouched keys keep their defaults
	assert.Equal(t, "auto", cfg.Report.Color)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv(paths.EnvConfigDir, t.TempDir())
	t.Setenv("REVDIFF_BACKUP_CREATE_FULL_PATH", "true")
	t.Setenv("REVDIFF_REPORT_COLOR", "never")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Backup.CreateFullPath)
	assert.Equal(t, "never", cfg.Report.Color)
}

func TestEnvToKey(t *testing.T) {
	assert.Equal(t, "backup.force", envToKey("REVDIFF_BACKUP_FORCE"))
	assert.Equal(t, "backup.create_full_path", envToKey("REVDIFF_BACKUP_CREATE_FULL_PATH"))
}

func TestGenerateContent(t *testing.T) {
	content, err := GenerateContent()
	require.NoError(t, err)
	assert.Contains(t, content, "[backup]")
	assert.Contains(t, content, "# force = false")
	assert.Contains(t, content, "# color = 'auto'")

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		assert.True(t, strings.HasPrefix(trimmed, "["), "uncommented value line: %q", line)
	}
}
