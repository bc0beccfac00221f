package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Economy  EconomyConfig  `mapstructure:"economy"`
	Logging  LoggingConfig  `mapstructure:"logging"`

	// Environment is "development", "production" or "test"
	Environment string `mapstructure:"environment"`
}

// TelegramConfig holds bot configuration
type TelegramConfig struct {
	BotToken string  `mapstructure:"bot_token"`
	Enabled  bool    `mapstructure:"enabled"`
	SendRate float64 `mapstructure:"send_rate"` // outbound messages per second
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// ServerConfig holds HTTP API configuration
type ServerConfig struct {
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
}

// EconomyConfig holds the accounting policy knobs
type EconomyConfig struct {
	StartingPoints      float64 `mapstructure:"starting_points"`
	HouseFeeRate        float64 `mapstructure:"house_fee_rate"`
	MystPerUSD          float64 `mapstructure:"myst_per_usd"`
	PointsPerCompletion float64 `mapstructure:"points_per_completion"`
	LeaderboardSize     int     `mapstructure:"leaderboard_size"`

	// AdminTelegramIDs lists users allowed to resolve predictions and
	// perform other privileged operations.
	AdminTelegramIDs []int64 `mapstructure:"admin_telegram_ids"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from an optional file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("AKARI")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("telegram.enabled", true)
	v.SetDefault("telegram.send_rate", 20.0)

	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)

	v.SetDefault("server.port", 8080)

	v.SetDefault("economy.starting_points", 0.0)
	v.SetDefault("economy.house_fee_rate", 0.05)
	v.SetDefault("economy.myst_per_usd", 10.0)
	v.SetDefault("economy.points_per_completion", 0.2)
	v.SetDefault("economy.leaderboard_size", 10)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Environment != "test" {
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required")
		}
		if c.Telegram.Enabled && c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
	}

	if c.Economy.HouseFeeRate < 0 || c.Economy.HouseFeeRate >= 1 {
		return fmt.Errorf("economy.house_fee_rate must be in [0, 1)")
	}
	if c.Economy.MystPerUSD <= 0 {
		return fmt.Errorf("economy.myst_per_usd must be positive")
	}
	if c.Economy.PointsPerCompletion <= 0 {
		return fmt.Errorf("economy.points_per_completion must be positive")
	}
	if c.Economy.LeaderboardSize < 1 {
		return fmt.Errorf("economy.leaderboard_size must be at least 1")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	return nil
}

// IsAdmin checks if a user may perform privileged operations
func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.Economy.AdminTelegramIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}
