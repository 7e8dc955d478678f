package services

import (
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	Wbuy     WbuyConfig
	Channel  ChannelConfig
	Postman  PostmanConfig
	Output   OutputConfig
	HTTP     HTTPConfig
}

type DatabaseConfig struct {
	URL          string
	LogLevel     string
	MaxIdleConns int
	MaxOpenConns int
}

type JWTConfig struct {
	Secret string
}

type WbuyConfig struct {
	BaseURL           string
	User              string
	Password          string
	PageSize          int
	RequestsPerSecond float64
}

type ChannelConfig struct {
	BaseURL string
	Token   string
}

type PostmanConfig struct {
	URL string
}

type OutputConfig struct {
	Dir string
}

type HTTPConfig struct {
	Timeout time.Duration
}

var ErrDatabaseNotConfigured = errors.New("DATABASE_URL is not configured")

// LoadConfig loads configuration from environment variables and config files.
// configFile overrides the .env lookup in the working directory.
func LoadConfig(configFile string) *Config {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".env")
		viper.AddConfigPath(".")
	}
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Keys mirror the env names in lower case so that .env files and the
	// process environment resolve to the same entries.

	// Set defaults
	viper.SetDefault("database_url", "")
	viper.SetDefault("database_log_level", "silent")
	viper.SetDefault("database_max_idle_conns", "2")
	viper.SetDefault("database_max_open_conns", "5")
	viper.SetDefault("jwt_secret", "")
	viper.SetDefault("wbuy_base_url", "https://sistema.sistemawbuy.com.br/api/v1")
	viper.SetDefault("wbuy_user", "")
	viper.SetDefault("wbuy_password", "")
	viper.SetDefault("wbuy_page_size", "50")
	viper.SetDefault("wbuy_requests_per_second", "2")
	viper.SetDefault("channel_base_url", "")
	viper.SetDefault("channel_token", "")
	viper.SetDefault("postman_url", "")
	viper.SetDefault("output_dir", ".")
	viper.SetDefault("http_timeout", "30s")

	// Map environment variables to config keys
	viper.BindEnv("database_url", "DATABASE_URL")
	viper.BindEnv("database_log_level", "DATABASE_LOG_LEVEL")
	viper.BindEnv("database_max_idle_conns", "DATABASE_MAX_IDLE_CONNS")
	viper.BindEnv("database_max_open_conns", "DATABASE_MAX_OPEN_CONNS")
	viper.BindEnv("jwt_secret", "JWT_SECRET")
	viper.BindEnv("wbuy_base_url", "WBUY_BASE_URL")
	viper.BindEnv("wbuy_user", "WBUY_USER")
	viper.BindEnv("wbuy_password", "WBUY_PASSWORD")
	viper.BindEnv("wbuy_page_size", "WBUY_PAGE_SIZE")
	viper.BindEnv("wbuy_requests_per_second", "WBUY_REQUESTS_PER_SECOND")
	viper.BindEnv("channel_base_url", "CHANNEL_BASE_URL")
	viper.BindEnv("channel_token", "CHANNEL_TOKEN")
	viper.BindEnv("postman_url", "POSTMAN_URL")
	viper.BindEnv("output_dir", "OUTPUT_DIR")
	viper.BindEnv("http_timeout", "HTTP_TIMEOUT")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Debug("Config file not found, using defaults and environment variables")
		} else {
			slog.Warn("Error reading config file", "error", err)
		}
	}

	return &Config{
		Database: DatabaseConfig{
			URL:          viper.GetString("database_url"),
			LogLevel:     viper.GetString("database_log_level"),
			MaxIdleConns: viper.GetInt("database_max_idle_conns"),
			MaxOpenConns: viper.GetInt("database_max_open_conns"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("jwt_secret"),
		},
		Wbuy: WbuyConfig{
			BaseURL:           viper.GetString("wbuy_base_url"),
			User:              viper.GetString("wbuy_user"),
			Password:          viper.GetString("wbuy_password"),
			PageSize:          viper.GetInt("wbuy_page_size"),
			RequestsPerSecond: viper.GetFloat64("wbuy_requests_per_second"),
		},
		Channel: ChannelConfig{
			BaseURL: viper.GetString("channel_base_url"),
			Token:   viper.GetString("channel_token"),
		},
		Postman: PostmanConfig{
			URL: viper.GetString("postman_url"),
		},
		Output: OutputConfig{
			Dir: viper.GetString("output_dir"),
		},
		HTTP: HTTPConfig{
			Timeout: viper.GetDuration("http_timeout"),
		},
	}
}
