package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server     ServerConfig
	Influx     InfluxConfig
	Ingest     IngestConfig
	Query      QueryConfig
	CORS       CORSConfig
	Monitoring MonitoringConfig
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type InfluxConfig struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Org     string        `mapstructure:"org"`
	Bucket  string        `mapstructure:"bucket"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type IngestConfig struct {
	// WriteToken guards POST /api/v1/telemetry/. Empty means auth is
	// skipped entirely: that is a development-mode bypass and must not
	// be relied on in production deployments.
	WriteToken string `mapstructure:"write_token"`
}

type QueryConfig struct {
	// Lookback bounds how far back last-value queries scan.
	Lookback time.Duration `mapstructure:"lookback"`
	// MaxLookback caps client-supplied ?window= values.
	MaxLookback time.Duration `mapstructure:"max_lookback"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type MonitoringConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// Load initializes configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetEnvPrefix("TLH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Load config file if exists
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Influx defaults
	viper.SetDefault("influx.url", "http://localhost:8086")
	viper.SetDefault("influx.timeout", "10s")

	// Query defaults
	viper.SetDefault("query.lookback", "168h") // 7 days
	viper.SetDefault("query.max_lookback", "720h")

	// CORS defaults
	viper.SetDefault("cors.allowed_origins", []string{"*"})

	// Monitoring defaults
	viper.SetDefault("monitoring.log_level", "info")
}

func validateConfig(config *Config) error {
	if config.Influx.URL == "" {
		return fmt.Errorf("influx url is required")
	}
	if config.Influx.Org == "" {
		return fmt.Errorf("influx org is required")
	}
	if config.Influx.Bucket == "" {
		return fmt.Errorf("influx bucket is required")
	}
	if config.Query.Lookback <= 0 {
		return fmt.Errorf("query lookback must be positive")
	}
	return nil
}
