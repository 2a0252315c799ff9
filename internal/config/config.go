package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the dashboard server.
type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Logger   Logger   `mapstructure:"logger"`
	Alerts   Alerts   `mapstructure:"alerts"`
	AI       AI       `mapstructure:"ai"`
}

// Server holds the configuration for the HTTP server.
type Server struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Alerts holds the configuration for outbound notification delivery and
// portfolio alert thresholds.
type Alerts struct {
	WebhookURL     string  `mapstructure:"webhook_url"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`

	// Profit/loss rate thresholds in percent. Crossing the warn threshold
	// emits a warning notification, crossing the critical threshold a
	// critical one.
	WarnThreshold     float64 `mapstructure:"warn_threshold"`
	CriticalThreshold float64 `mapstructure:"critical_threshold"`

	EmailEnabled bool   `mapstructure:"email_enabled"`
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	EmailFrom    string `mapstructure:"email_from"`
	EmailTo      string `mapstructure:"email_to"`
}

// AI holds the configuration for the strategy chat model provider.
type AI struct {
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	// A local .env file may carry secrets (DB DSN, API key); a missing file
	// is not an error.
	_ = godotenv.Load()

	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("alerts.rate_limit", 5) // outbound webhook requests per second
	viper.SetDefault("alerts.rate_limit_burst", 2)
	viper.SetDefault("alerts.warn_threshold", 5)
	viper.SetDefault("alerts.critical_threshold", 10)
	viper.SetDefault("ai.base_url", "https://api.anthropic.com/v1")
	viper.SetDefault("ai.model", "claude-3-5-sonnet-20241022")
	viper.SetDefault("ai.max_tokens", 4096)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
