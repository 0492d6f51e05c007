package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/smarterqueue/threads-go/threads"
)

// EnvPrefix prefixes environment overrides, e.g. THREADS_APP_CLIENT_ID
const EnvPrefix = "THREADS"

// Load loads the configuration from file and environment. A missing config
// file is only an error when configPath names it explicitly.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("threads")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".threads"))
		}
		v.AddConfigPath("/etc/threads/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Level and format names are case-insensitive
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values. Every key gets a default so
// AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.client_id", "")
	v.SetDefault("app.client_secret", "")

	v.SetDefault("auth.access_token", "")
	v.SetDefault("auth.redirect_uri", "")
	v.SetDefault("auth.scopes", []string{"threads_basic"})

	v.SetDefault("api.version", threads.DefaultVersionCode)
	v.SetDefault("api.base_url", threads.GraphBaseURL)
	v.SetDefault("api.timeout", threads.DefaultTimeout)
	v.SetDefault("api.connect_timeout", threads.DefaultConnectTimeout)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.App.ClientID == "" {
		return fmt.Errorf("app.client_id is required")
	}
	if cfg.App.ClientSecret == "" {
		return fmt.Errorf("app.client_secret is required")
	}

	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", cfg.API.Timeout)
	}
	if cfg.API.ConnectTimeout <= 0 {
		return fmt.Errorf("api.connect_timeout must be positive, got %s", cfg.API.ConnectTimeout)
	}

	// Validate logging level
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
