package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Auth       AuthConfig       `yaml:"auth"`
	API        APIConfig        `yaml:"api"`
	Reviews    ReviewsConfig    `yaml:"reviews"`
	Bookings   BookingsConfig   `yaml:"bookings"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Telegram   TelegramConfig   `yaml:"telegram"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// AuthConfig describes how bearer tokens issued by the identity provider are verified.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
	Audience  string `yaml:"audience"`
}

type APIConfig struct {
	HTTP      APIHTTPConfig      `yaml:"http"`
	APIKeys   APIKeysConfig      `yaml:"api_keys"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig         `yaml:"cors"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port"`
}

// APIKeysConfig guards machine-to-machine endpoints such as the payment callback.
type APIKeysConfig struct {
	HeaderAPIKey string         `yaml:"header_api_key"`
	HeaderExtra  string         `yaml:"header_extra"`
	Keys         []APIClientKey `yaml:"keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Extra       string   `yaml:"extra"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type ReviewsConfig struct {
	RecentDefaultLimit int `yaml:"recent_default_limit"`
	RecentMaxLimit     int `yaml:"recent_max_limit"`
	MaxBulkIDs         int `yaml:"max_bulk_ids"`
	// SubmitLimit caps write attempts per user inside SubmitWindowSeconds.
	SubmitLimit         int `yaml:"submit_limit"`
	SubmitWindowSeconds int `yaml:"submit_window_seconds"`
}

type BookingsConfig struct {
	// MaxAdvanceDays is how far ahead a check-in may be booked.
	MaxAdvanceDays int `yaml:"max_advance_days"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type TelegramConfig struct {
	Enabled  bool    `yaml:"enabled"`
	BotToken string  `yaml:"bot_token"`
	ChatIDs  []int64 `yaml:"chat_ids"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; real environment variables win over it
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("auth jwt_secret is required")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return errors.New("telegram bot token is required when telegram is enabled")
		}
		if len(c.Telegram.ChatIDs) == 0 {
			return errors.New("telegram chat_ids must not be empty when telegram is enabled")
		}
	}

	if c.Bookings.MaxAdvanceDays < 0 {
		return fmt.Errorf("bookings.max_advance_days must not be negative, got %d", c.Bookings.MaxAdvanceDays)
	}

	if c.Reviews.RecentDefaultLimit > c.Reviews.RecentMaxLimit {
		return fmt.Errorf("reviews.recent_default_limit (%d) exceeds recent_max_limit (%d)",
			c.Reviews.RecentDefaultLimit, c.Reviews.RecentMaxLimit)
	}

	return validateAPIKeys(c.API.APIKeys.Keys)
}

func validateAPIKeys(keys []APIClientKey) error {
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if strings.TrimSpace(k.Key) == "" {
			return fmt.Errorf("api key '%s' has empty key", k.Name)
		}
		if seen[k.Key] {
			return fmt.Errorf("duplicate api key for client '%s'", k.Name)
		}
		seen[k.Key] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.API.APIKeys.HeaderAPIKey == "" {
		c.API.APIKeys.HeaderAPIKey = "x-api-key"
	}
	if c.API.APIKeys.HeaderExtra == "" {
		c.API.APIKeys.HeaderExtra = "x-api-extra"
	}

	if c.Reviews.RecentDefaultLimit == 0 {
		c.Reviews.RecentDefaultLimit = 6
	}
	if c.Reviews.RecentMaxLimit == 0 {
		c.Reviews.RecentMaxLimit = 50
	}
	if c.Reviews.MaxBulkIDs == 0 {
		c.Reviews.MaxBulkIDs = 100
	}
	if c.Reviews.SubmitLimit == 0 {
		c.Reviews.SubmitLimit = 10
	}
	if c.Reviews.SubmitWindowSeconds == 0 {
		c.Reviews.SubmitWindowSeconds = 60
	}

	if c.Bookings.MaxAdvanceDays == 0 {
		c.Bookings.MaxAdvanceDays = 365
	}

	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "./backups"
	}
}
