// Package config loads service configuration from an optional .env file plus
// the environment, so cmd/server stays lean.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the server needs to wire its dependencies.
type Config struct {
	ServerAddr         string `mapstructure:"SERVER_ADDR"`
	DatabaseURL        string `mapstructure:"DATABASE_URL"`
	RedisURL           string `mapstructure:"REDIS_URL"`
	OperatorSigningKey string `mapstructure:"OPERATOR_SIGNING_KEY"`
	RedeemBaseURL      string `mapstructure:"REDEEM_BASE_URL"`
	DebounceWindowMS   int    `mapstructure:"DEBOUNCE_WINDOW_MS"`
}

// DebounceWindow returns the configured debounce window as a duration.
func (c Config) DebounceWindow() time.Duration {
	return time.Duration(c.DebounceWindowMS) * time.Millisecond
}

// Load reads configuration from path/.env if present and from environment
// variables. Environment variables win.
func Load(path string) (Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_ADDR", ":8080")
	viper.SetDefault("REDEEM_BASE_URL", "http://localhost:8080")
	// The continuous-input scanner fires repeat reads well under this window.
	viper.SetDefault("DEBOUNCE_WINDOW_MS", 1500)

	if err := viper.ReadInConfig(); err != nil {
		// A missing .env is fine; anything else is a real failure.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.OperatorSigningKey == "" {
		return Config{}, fmt.Errorf("OPERATOR_SIGNING_KEY is required")
	}
	return cfg, nil
}
