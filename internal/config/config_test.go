package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)

	cfg, err = LoadFrom("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
}

func TestLoadFrom_YAMLOverridesDefaults(t *testing.T) {
	path := writeYAML(t, `
git:
  binary: /usr/local/bin/git
  max_concurrent: 3
refresh:
  page_size: 25
  query_timeout: 5s
watch:
  enabled: false
logging:
  level: debug
  format: json
`)
	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "/usr/local/bin/git", cfg.Git.Binary)
	assert.Equal(t, 3, cfg.Git.MaxConcurrent)
	assert.Equal(t, 25, cfg.Refresh.PageSize)
	assert.Equal(t, 5*time.Second, cfg.Refresh.QueryTimeout)
	assert.Equal(t, Defaults().Refresh.TickInterval, cfg.Refresh.TickInterval, "unset YAML field lost its default")
	assert.False(t, cfg.Watch.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFrom_EnvOverridesYAML(t *testing.T) {
	path := writeYAML(t, "refresh:\n  page_size: 25\n")
	t.Setenv("GITDECK_PAGE_SIZE", "50")
	t.Setenv("GITDECK_QUERY_TIMEOUT", "2m")
	t.Setenv("GITDECK_WATCH", "false")
	t.Setenv("GITDECK_THEME", "dark")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Refresh.PageSize)
	assert.Equal(t, 2*time.Minute, cfg.Refresh.QueryTimeout)
	assert.False(t, cfg.Watch.Enabled)
	assert.Equal(t, "dark", cfg.UI.Theme)
}

func TestLoadFrom_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr string
	}{
		{name: "bad_yaml", yaml: "git: [", wantErr: "config yaml"},
		{name: "bad_env_int", env: map[string]string{"GITDECK_PAGE_SIZE": "lots"}, wantErr: "GITDECK_PAGE_SIZE"},
		{name: "bad_env_duration", env: map[string]string{"GITDECK_QUERY_TIMEOUT": "soon"}, wantErr: "GITDECK_QUERY_TIMEOUT"},
		{name: "zero_concurrency", yaml: "git:\n  max_concurrent: 0\n", wantErr: "git.max_concurrent"},
		{name: "bad_theme", yaml: "ui:\n  theme: purple\n", wantErr: "ui.theme"},
		{name: "bad_format", yaml: "logging:\n  format: xml\n", wantErr: "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.yaml != "" {
				path = writeYAML(t, tt.yaml)
			}
			_, err := LoadFrom(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
