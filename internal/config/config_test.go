package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/web-analyzer-client/internal/config"
	apperrors "github.com/jrsteele09/web-analyzer-client/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("AUTH_STORAGE_KEY", "")
	t.Setenv("API_TIMEOUT", "")

	c := config.New()
	require.Equal(t, "http://localhost:8000/api/v1", c.GetAPIBaseURL())
	require.Equal(t, "webAnalyzer_auth", c.GetAuthStorageKey())
	require.Equal(t, 30*time.Second, c.GetAPITimeout())
	require.Equal(t, "file", c.GetStorageDriver())
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("API_BASE_URL=https://api.example.com/v1/\nAUTH_STORAGE_KEY=custom_key\n"), 0o600))

	// t.Setenv restores the originals; godotenv only fills unset variables.
	t.Setenv("API_BASE_URL", "")
	t.Setenv("AUTH_STORAGE_KEY", "")
	require.NoError(t, os.Unsetenv("API_BASE_URL"))
	require.NoError(t, os.Unsetenv("AUTH_STORAGE_KEY"))

	c, err := config.Load(envFile)
	require.NoError(t, err)
	require.Equal(t, "https://api.example.com/v1", c.GetAPIBaseURL())
	require.Equal(t, "custom_key", c.GetAuthStorageKey())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.NotEmpty(t, c.GetAPIBaseURL())
}

type emptyBaseURL struct {
	config.Config
}

func (emptyBaseURL) GetAPIBaseURL() string { return "" }

func TestValidateRequiresBaseURL(t *testing.T) {
	err := config.Validate(emptyBaseURL{config.New()})
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrMissingConfig))
}

func TestDebugModeForcesDebugLevel(t *testing.T) {
	t.Setenv("DEBUG_MODE", "true")
	t.Setenv("LOG_LEVEL", "warn")
	require.Equal(t, "debug", config.New().GetLogLevel())
}

func TestFakeAPIConfig(t *testing.T) {
	t.Setenv("FAKEAPI_ADDR", "")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "")
	c := config.New()
	require.Equal(t, ":8000", c.GetFakeAPIAddr())
	require.Equal(t, 15*time.Minute, c.GetAccessTokenTTL())

	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "30")
	require.Equal(t, 30*time.Minute, c.GetAccessTokenTTL())

	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "-1")
	require.Equal(t, 15*time.Minute, c.GetAccessTokenTTL())
}
