package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, "https://api.danaam.sa/api", cfg.BaseURL)
	assert.Equal(t, "8089", cfg.StubPort)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 6, cfg.OTPLength)
	assert.Equal(t, 5, cfg.OTPMaxAttempts)
	assert.Equal(t, 3, cfg.OTPResendLimit)
	assert.Equal(t, 60*time.Second, cfg.OTPResendWindow)
	assert.Equal(t, "admin@danaam.sa", cfg.AdminEmail)
	assert.Contains(t, cfg.CredentialsPath, "credentials.json")
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
client:
  base_url: http://localhost:8089
  timeout: 5s
stub:
  port: 9000
  otp_max_attempts: 2
  access_ttl: 1m
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8089", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "9000", cfg.StubPort)
	assert.Equal(t, 2, cfg.OTPMaxAttempts)
	assert.Equal(t, time.Minute, cfg.AccessTTL)
}

func TestLoadRejectsBadDurations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("client:\n  timeout: nonsense\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DANAAM_BASE_URL", "http://stub.internal:8089")
	t.Setenv("STUB_ADMIN_EMAIL", "root@danaam.sa")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, "http://stub.internal:8089", cfg.BaseURL)
	assert.Equal(t, "root@danaam.sa", cfg.AdminEmail)
}
