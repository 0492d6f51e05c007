package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "threads.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("file with defaults", func(t *testing.T) {
		path := writeConfig(t, `
app:
  client_id: "123"
  client_secret: "secret"
auth:
  redirect_uri: "https://example.com/callback"
  scopes:
    - threads_basic
    - threads_content_publish
`)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "123", cfg.App.ClientID)
		assert.Equal(t, "secret", cfg.App.ClientSecret)
		assert.Equal(t, "https://example.com/callback", cfg.Auth.RedirectURI)
		assert.Equal(t, []string{"threads_basic", "threads_content_publish"}, cfg.Auth.Scopes)
		assert.Empty(t, cfg.Auth.AccessToken)

		assert.Equal(t, "v1.0", cfg.API.Version)
		assert.Equal(t, "https://graph.threads.net", cfg.API.BaseURL)
		assert.Equal(t, 60*time.Second, cfg.API.Timeout)
		assert.Equal(t, 10*time.Second, cfg.API.ConnectTimeout)

		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, "console", cfg.Logging.Format)
		assert.True(t, cfg.Logging.Color)
	})

	t.Run("durations from file", func(t *testing.T) {
		path := writeConfig(t, `
app:
  client_id: "123"
  client_secret: "secret"
api:
  version: v2.0
  timeout: 30s
  connect_timeout: 2s
`)

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "v2.0", cfg.API.Version)
		assert.Equal(t, 30*time.Second, cfg.API.Timeout)
		assert.Equal(t, 2*time.Second, cfg.API.ConnectTimeout)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := writeConfig(t, `
app:
  client_id: "123"
  client_secret: "secret"
`)
		t.Setenv("THREADS_APP_CLIENT_SECRET", "from-env")
		t.Setenv("THREADS_AUTH_ACCESS_TOKEN", "env-token")
		t.Setenv("THREADS_LOGGING_LEVEL", "debug")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "123", cfg.App.ClientID)
		assert.Equal(t, "from-env", cfg.App.ClientSecret)
		assert.Equal(t, "env-token", cfg.Auth.AccessToken)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("logging names are case-insensitive", func(t *testing.T) {
		path := writeConfig(t, `
app:
  client_id: "123"
  client_secret: "secret"
logging:
  level: DEBUG
  format: Json
`)

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)

		t.Setenv("THREADS_LOGGING_LEVEL", "Warn")
		cfg, err = Load(path)
		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.Logging.Level)
	})

	t.Run("explicit file must exist", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config")
	})

	t.Run("no file found uses environment", func(t *testing.T) {
		dir := t.TempDir()
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(dir))
		t.Cleanup(func() { _ = os.Chdir(wd) })
		t.Setenv("HOME", dir)
		t.Setenv("THREADS_APP_CLIENT_ID", "env-id")
		t.Setenv("THREADS_APP_CLIENT_SECRET", "env-secret")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "env-id", cfg.App.ClientID)
		assert.Equal(t, "env-secret", cfg.App.ClientSecret)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeConfig(t, "app: [unclosed")

		_, err := Load(path)
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App: AppConfig{ClientID: "id", ClientSecret: "secret"},
			API: APIConfig{
				Version:        "v1.0",
				Timeout:        time.Minute,
				ConnectTimeout: 10 * time.Second,
			},
			Logging: LoggingConfig{Level: "info", Format: "console"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "missing client id",
			mutate:  func(cfg *Config) { cfg.App.ClientID = "" },
			wantErr: "app.client_id is required",
		},
		{
			name:    "missing client secret",
			mutate:  func(cfg *Config) { cfg.App.ClientSecret = "" },
			wantErr: "app.client_secret is required",
		},
		{
			name:    "zero timeout",
			mutate:  func(cfg *Config) { cfg.API.Timeout = 0 },
			wantErr: "api.timeout must be positive",
		},
		{
			name:    "negative connect timeout",
			mutate:  func(cfg *Config) { cfg.API.ConnectTimeout = -time.Second },
			wantErr: "api.connect_timeout must be positive",
		},
		{
			name:    "invalid level",
			mutate:  func(cfg *Config) { cfg.Logging.Level = "verbose" },
			wantErr: "invalid logging level: verbose",
		},
		{
			name:   "trace level",
			mutate: func(cfg *Config) { cfg.Logging.Level = "trace" },
		},
		{
			name:    "invalid format",
			mutate:  func(cfg *Config) { cfg.Logging.Format = "xml" },
			wantErr: "invalid logging format: xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
