package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vlist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadEmptyPathGivesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
addr: 127.0.0.1:9000
log_level: debug
log_format: json
lists: [todo, groceries]
`))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "/metrics", cfg.MetricsPath)
	assert.Equal(t, 64, cfg.SubscriberBuffer)
	assert.Equal(t, []string{"todo", "groceries"}, cfg.Lists)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
	assert.NotNil(t, cfg.Logger())
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "subscriber_buffer: 0\nlog_level: loud\nmetrics_path: metrics\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subscriber_buffer")
	assert.Contains(t, err.Error(), "log_level")
	assert.Contains(t, err.Error(), "metrics_path")

	_, err = Load(writeConfig(t, "addr: [unterminated"))
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
