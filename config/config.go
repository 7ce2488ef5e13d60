// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Email     EmailConfig
	Discord   DiscordConfig
	NFT       NFTConfig
	Scheduler SchedulerConfig
	HTTP      HTTPConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string      `env:"APP_NAME" envDefault:"cohort-hub"`
	Environment Environment `env:"APP_ENV" envDefault:"development"`
	Debug       bool        `env:"APP_DEBUG" envDefault:"false"`

	// Timezone for the daily reminder schedule. The community runs on
	// Brasília time.
	Timezone string `env:"APP_TIMEZONE" envDefault:"America/Sao_Paulo"`

	// LogFormat is "json" or "text".
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string `env:"DATABASE_URL"`
	MaxConns int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	MinConns int32  `env:"DB_MIN_CONNS" envDefault:"2"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	URL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// CacheTTL bounds how stale cached cohort/course documents may be.
	CacheTTL time.Duration `env:"REDIS_CACHE_TTL" envDefault:"5m"`
}

// EmailConfig holds mail service settings.
type EmailConfig struct {
	BaseURL string `env:"EMAIL_API_URL"`
	APIKey  string `env:"EMAIL_API_KEY"`
	From    string `env:"EMAIL_FROM" envDefault:"oi@web3camp.dev"`
}

// DiscordConfig holds Discord API settings.
type DiscordConfig struct {
	BotToken string `env:"DISCORD_BOT_TOKEN"`
	GuildID  string `env:"DISCORD_GUILD_ID"`
}

// NFTConfig holds minting service settings.
type NFTConfig struct {
	BaseURL string `env:"NFT_API_URL"`
	APIKey  string `env:"NFT_API_KEY"`
}

// SchedulerConfig holds background job settings.
type SchedulerConfig struct {
	Enabled bool `env:"SCHEDULER_ENABLED" envDefault:"true"`

	// Daily inactivity reminder time, in the configured timezone. The
	// reminder window is two hours wide, so this must fire exactly once a
	// day for the window logic to hold.
	ReminderHour   int `env:"REMINDER_HOUR" envDefault:"19"`
	ReminderMinute int `env:"REMINDER_MINUTE" envDefault:"0"`
}

// HTTPConfig holds admin HTTP server settings.
type HTTPConfig struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"HTTP_PORT" envDefault:"8080"`
}

// Load parses configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Email.BaseURL == "" {
		return fmt.Errorf("EMAIL_API_URL is required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.App.Timezone, err)
	}
	if c.Scheduler.ReminderHour < 0 || c.Scheduler.ReminderHour > 23 {
		return fmt.Errorf("REMINDER_HOUR out of range: %d", c.Scheduler.ReminderHour)
	}
	return nil
}

// Location returns the configured timezone. Validate must have passed.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}
