package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/simaris-dev/simaris-auth/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Port)
	require.Equal(t, "DEV", cfg.Env)
	require.Equal(t, 5*time.Second, cfg.SSOTimeout)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SSO_API_URL", "https://sso.example.ac.id")
	t.Setenv("SSO_CLIENT_ID", "simaris")
	t.Setenv("SSO_TIMEOUT", "2s")
	t.Setenv("SSO_INSECURE_SKIP_VERIFY", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.Port)
	require.Equal(t, "https://sso.example.ac.id", cfg.SSOAPIURL)
	require.Equal(t, "simaris", cfg.SSOClientID)
	require.Equal(t, 2*time.Second, cfg.SSOTimeout)
	require.True(t, cfg.SSOInsecureSkipVerify)
	require.NoError(t, cfg.Validate())
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `
sso_api_url: https://sso.example.ac.id
sso_client_id: simaris
redis_addr: localhost:6379
session_ttl: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "https://sso.example.ac.id", cfg.SSOAPIURL)
	require.Equal(t, "localhost:6379", cfg.RedisAddr)
	require.Equal(t, time.Hour, cfg.SessionTTL)
}

func TestEnvBeatsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sso_client_id: from-file\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SSO_CLIENT_ID", "from-env")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.SSOClientID)
}

func TestValidateMissingProvider(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Error(t, cfg.Validate())
}
