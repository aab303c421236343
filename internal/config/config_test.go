package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"AZURE_SUBSCRIPTION_ID", "GEODR_STATE_DIR", "GEODR_LOG_VERBOSITY", "GEODR_OUTPUT", ConfigFileEnv} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_STATE_HOME", "/tmp/state")

	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "", s.SubscriptionID)
	assert.Equal(t, "/tmp/state/geodr", s.StateDir)
	assert.Equal(t, 0, s.LogVerbosity)
	assert.Equal(t, "table", s.Output)
	assert.ErrorIs(t, s.RequireSubscription(), ErrNoSubscription)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("AZURE_SUBSCRIPTION_ID", "00000000-0000-0000-0000-000000000001")
	t.Setenv("GEODR_STATE_DIR", "/var/lib/geodr")
	t.Setenv("GEODR_LOG_VERBOSITY", "2")
	t.Setenv("GEODR_OUTPUT", "json")

	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "00000000-0000-0000-0000-000000000001", s.SubscriptionID)
	assert.Equal(t, "/var/lib/geodr", s.StateDir)
	assert.Equal(t, 2, s.LogVerbosity)
	assert.Equal(t, "json", s.Output)
	assert.NoError(t, s.RequireSubscription())
}

func TestLoad_FileWithEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "geodr.yaml")
	content := `subscription_id: from-file
state_dir: /srv/geodr
log_verbosity: 1
output: yaml
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	t.Setenv("GEODR_OUTPUT", "json")

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", s.SubscriptionID)
	assert.Equal(t, "/srv/geodr", s.StateDir)
	assert.Equal(t, 1, s.LogVerbosity)
	assert.Equal(t, "json", s.Output)
}

func TestLoad_ConfigFileFromEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "geodr.yaml")
	require.NoError(t, os.WriteFile(path, []byte("state_dir: /opt/geodr\n"), 0600))
	t.Setenv(ConfigFileEnv, path)

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/opt/geodr", s.StateDir)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_NegativeVerbosity(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEODR_STATE_DIR", "/tmp/geodr")
	t.Setenv("GEODR_LOG_VERBOSITY", "-1")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_verbosity")
}

func TestUsage(t *testing.T) {
	usage := Usage()
	assert.Contains(t, usage, "AZURE_SUBSCRIPTION_ID")
	assert.Contains(t, usage, "GEODR_STATE_DIR")
}
