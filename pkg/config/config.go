// Package config loads application configuration for the ktbn CLI and
// server from file, environment, and defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Engine configuration
	Engine EngineConfig `mapstructure:"engine"`

	// Network defaults applied when a caller does not specify them
	Network NetworkConfig `mapstructure:"network"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// EngineConfig selects the probabilistic-graph engine backend.
type EngineConfig struct {
	Provider string `mapstructure:"provider"` // memory
}

// NetworkConfig holds default template parameters.
type NetworkConfig struct {
	Horizon   int    `mapstructure:"horizon"`
	Separator string `mapstructure:"separator"`
}

// TelemetryConfig holds telemetry configuration.
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	viper.SetDefault("engine.provider", "memory")

	viper.SetDefault("network.horizon", 2)
	viper.SetDefault("network.separator", "#")

	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("telemetry.parquet_path", fmt.Sprintf("%s/.ktbn/telemetry", home))
	}
}

// overrideWithEnv overrides config with environment variables.
func overrideWithEnv(config *Config) {
	if provider := os.Getenv("KTBN_ENGINE"); provider != "" {
		config.Engine.Provider = provider
	}
	if horizon := os.Getenv("KTBN_HORIZON"); horizon != "" {
		if k, err := strconv.Atoi(horizon); err == nil {
			config.Network.Horizon = k
		}
	}
	if sep := os.Getenv("KTBN_SEPARATOR"); sep != "" {
		config.Network.Separator = sep
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
