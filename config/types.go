package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Auth    AuthConfig    `mapstructure:"auth"`
	API     APIConfig     `mapstructure:"api"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// AppConfig holds the Threads app credentials
type AppConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// AuthConfig holds the user token and the OAuth redirect settings
type AuthConfig struct {
	AccessToken string   `mapstructure:"access_token"`
	RedirectURI string   `mapstructure:"redirect_uri"`
	Scopes      []string `mapstructure:"scopes"`
}

// APIConfig controls how the client reaches the Graph API
type APIConfig struct {
	Version        string        `mapstructure:"version"`
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
