package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Auth         AuthConfig         `yaml:"auth"`
	Mail         MailConfig         `yaml:"mail"`
	Push         PushConfig         `yaml:"push"`
	Notification NotificationConfig `yaml:"notification"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int      `yaml:"port" env:"BOOKING_PORT"`
	RateLimitPerSec float64  `yaml:"rate_limit_per_sec" env:"BOOKING_RATE_LIMIT_PER_SEC"`
	RateLimitBurst  int      `yaml:"rate_limit_burst" env:"BOOKING_RATE_LIMIT_BURST"`
	CacheTTLSeconds int      `yaml:"cache_ttl_seconds" env:"BOOKING_CACHE_TTL_SECONDS"`
	Timezone        string   `yaml:"timezone" env:"BOOKING_TIMEZONE"`
	AllowedOrigins  []string `yaml:"allowed_origins" env:"BOOKING_ALLOWED_ORIGINS" envSeparator:","`

	Location *time.Location `yaml:"-" env:"-"`
	CacheTTL time.Duration  `yaml:"-" env:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                    string `yaml:"driver" env:"BOOKING_DB_DRIVER"`
	DSN                       string `yaml:"dsn" env:"BOOKING_DB_DSN"`
	MaxOpenConns              int    `yaml:"max_open_conns" env:"BOOKING_DB_MAX_OPEN_CONNS"`
	MaxIdleConns              int    `yaml:"max_idle_conns" env:"BOOKING_DB_MAX_IDLE_CONNS"`
	ConnMaxLifetimeMinutes    int    `yaml:"conn_max_lifetime_minutes" env:"BOOKING_DB_CONN_MAX_LIFETIME_MINUTES"`
	EnableExclusionConstraint bool   `yaml:"enable_exclusion_constraint" env:"BOOKING_DB_EXCLUSION_CONSTRAINT"`
	LogLevel                  string `yaml:"log_level" env:"BOOKING_DB_LOG_LEVEL"`
}

// AuthConfig holds the token signing configuration.
type AuthConfig struct {
	TokenSecret   string `yaml:"token_secret" env:"BOOKING_TOKEN_SECRET"`
	TokenTTLHours int    `yaml:"token_ttl_hours" env:"BOOKING_TOKEN_TTL_HOURS"`

	TokenTTL time.Duration `yaml:"-" env:"-"`
}

// MailConfig holds the SMTP transport used for reservation emails.
type MailConfig struct {
	Enabled  bool   `yaml:"enabled" env:"BOOKING_MAIL_ENABLED"`
	Host     string `yaml:"host" env:"BOOKING_MAIL_HOST"`
	Port     int    `yaml:"port" env:"BOOKING_MAIL_PORT"`
	Username string `yaml:"username" env:"BOOKING_MAIL_USERNAME"`
	Password string `yaml:"password" env:"EMAIL_PASSWORD"`
	From     string `yaml:"from" env:"BOOKING_MAIL_FROM"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key" env:"BOOKING_VAPID_PUBLIC_KEY"`
	PrivateKey string `yaml:"vapid_private_key" env:"BOOKING_VAPID_PRIVATE_KEY"`
	Subject    string `yaml:"subject" env:"BOOKING_VAPID_SUBJECT"`
	TTL        int    `yaml:"ttl" env:"BOOKING_VAPID_TTL"`
}

// Enabled reports whether both VAPID keys are present.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// NotificationConfig holds the dispatch worker pool and the maintenance policy.
type NotificationConfig struct {
	WorkerPoolSize       int    `yaml:"worker_pool_size" env:"BOOKING_NOTIFY_WORKERS"`
	QueueSize            int    `yaml:"queue_size" env:"BOOKING_NOTIFY_QUEUE_SIZE"`
	BroadcastGroup       string `yaml:"broadcast_group" env:"BOOKING_NOTIFY_GROUP"`
	EmailMaintenance     bool   `yaml:"email_maintenance" env:"BOOKING_NOTIFY_EMAIL_MAINTENANCE"`
	BroadcastMaintenance bool   `yaml:"broadcast_maintenance" env:"BOOKING_NOTIFY_BROADCAST_MAINTENANCE"`
}

// DefaultBroadcastGroup is the group live administrative sessions join.
const DefaultBroadcastGroup = "admin-notifications"

// Load reads the configuration from the given path, then applies environment overrides.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

	if cfg.Server.Timezone == "" {
		cfg.Server.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		return fmt.Errorf("invalid server.timezone %q: %w", cfg.Server.Timezone, err)
	}
	cfg.Server.Location = loc

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}

	if cfg.Auth.TokenTTLHours <= 0 {
		cfg.Auth.TokenTTLHours = 24
	}
	cfg.Auth.TokenTTL = time.Duration(cfg.Auth.TokenTTLHours) * time.Hour

	if cfg.Mail.Port <= 0 {
		cfg.Mail.Port = 587
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.Username
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.Notification.WorkerPoolSize <= 0 {
		slog.Warn("notification.worker_pool_size is not set or invalid; defaulting to 1")
		cfg.Notification.WorkerPoolSize = 1
	}
	if cfg.Notification.QueueSize <= 0 {
		cfg.Notification.QueueSize = 64
	}
	if cfg.Notification.BroadcastGroup == "" {
		cfg.Notification.BroadcastGroup = DefaultBroadcastGroup
	}
	return nil
}

// Validate reports configuration that cannot be defaulted.
func (cfg *Config) Validate() error {
	var errs []error
	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("database.driver must be postgres or sqlite, got %q", cfg.Database.Driver))
	}
	if cfg.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if len(cfg.Auth.TokenSecret) < 16 {
		errs = append(errs, errors.New("auth.token_secret must be at least 16 characters"))
	}
	if cfg.Mail.Enabled && cfg.Mail.Host == "" {
		errs = append(errs, errors.New("mail.host is required when mail is enabled"))
	}
	return errors.Join(errs...)
}
