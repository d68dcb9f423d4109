package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config holds coverage-server settings. Values come from an optional JSON
// config file layered over the defaults below; command-line flags may still
// override addresses at the cmd level.
type Config struct {
	ListenAddr  string `mapstructure:"listenAddr"`
	MetricsAddr string `mapstructure:"metricsAddr"`

	LogLevel  string `mapstructure:"logLevel"`
	LogFormat string `mapstructure:"logFormat"`

	Elevation ElevationConfig `mapstructure:"elevation"`

	// Workers bounds concurrent elevation ray fetches per computation.
	Workers int `mapstructure:"workers"`
}

// ElevationConfig configures the Open-Elevation client.
type ElevationConfig struct {
	BaseURL        string `mapstructure:"baseUrl"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
}

// Load reads configuration from an optional coverage-server.cfg.json in
// configDir. A missing file falls back to defaults; a malformed file is an
// error.
func Load(configDir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("listenAddr", ":8080")
	v.SetDefault("metricsAddr", ":9090")
	v.SetDefault("logLevel", "info")
	v.SetDefault("logFormat", "text")
	v.SetDefault("workers", 4)

	v.SetDefault("elevation.baseUrl", "https://api.open-elevation.com")
	v.SetDefault("elevation.timeoutSeconds", 30)

	v.SetConfigName("coverage-server.cfg")
	v.SetConfigType("json")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Elevation.TimeoutSeconds < 1 {
		cfg.Elevation.TimeoutSeconds = 30
	}
	return &cfg, nil
}
