package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("TOGGL_API_TOKEN", "secret-token")
	t.Setenv("TOGGL_WORKSPACE_ID", "42")
	t.Setenv("QUEUE_SERIALIZE_SUMMARY", "true")
	t.Setenv("HTTP_ADDR", ":9999")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret-token", cfg.Toggl.APIToken)
	assert.Equal(t, "42", cfg.Toggl.WorkspaceID)
	assert.Equal(t, "42", cfg.WorkspaceID(), "Config satisfies ports.Settings")
	assert.True(t, cfg.Queue.SerializeSummary)
	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	assert.Equal(t, float64(1), cfg.Queue.RPS, "defaults survive partial overrides")
}

func TestLoad_FileLayeredUnderEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
toggl:
  api_token: file-token
  workspace_id: "7"
queue:
  rps: 2
`), 0o600))

	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("TOGGL_WORKSPACE_ID", "42")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.Toggl.APIToken)
	assert.Equal(t, "42", cfg.Toggl.WorkspaceID, "env outranks file")
	assert.Equal(t, float64(2), cfg.Queue.RPS)
}

func TestLoad_RequiresToken(t *testing.T) {
	t.Setenv("TOGGL_API_TOKEN", "")
	_, err := Load()
	require.Error(t, err)
}

func TestValidate_QueueBounds(t *testing.T) {
	cfg := defaultConfig()
	cfg.Toggl.APIToken = "x"
	require.NoError(t, cfg.Validate())

	cfg.Queue.RPS = 0
	require.Error(t, cfg.Validate())

	cfg.Queue.RPS = 1
	cfg.Queue.Burst = 0
	require.Error(t, cfg.Validate())
}
