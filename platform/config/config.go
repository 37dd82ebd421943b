// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// LineConfig provides LINE Messaging API settings.
type LineConfig interface {
	GetLineChannelSecret() string
	GetLineChannelAccessToken() string
	GetLineAdminUserID() string
}

// GeminiConfig provides settings for the Gemini inference client.
type GeminiConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	GetGeminiVisionModel() string
}

// PricingConfig provides the pricing knobs for listing generation.
type PricingConfig interface {
	GetShippingCost() int
	GetMinimumProfit() int
	GetPlatformFeeRate() float64
}

// SessionConfig provides conversation session settings.
type SessionConfig interface {
	GetSessionTimeout() time.Duration
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketProductImages() string
	IsMinIOEnabled() bool
}

// SchedulerConfig provides settings for the asynq task scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetWeeklyReportCron() string
	GetMonthlyReportCron() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env      string
	HTTPAddr string

	DatabaseURL string

	LineChannelSecret      string
	LineChannelAccessToken string
	LineAdminUserID        string

	GeminiAPIKey      string
	GeminiModel       string
	GeminiVisionModel string

	ShippingCost    int
	MinimumProfit   int
	PlatformFeeRate float64

	SessionTimeout time.Duration

	CORSAllowAll   bool
	CORSOrigins    []string
	CORSAllowCreds bool

	MinIOEndpoint            string
	MinIOAccessKey           string
	MinIOSecretKey           string
	MinIOUseSSL              bool
	MinioBucketProductImages string

	RedisURL          string
	WeeklyReportCron  string
	MonthlyReportCron string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// LineConfig implementation
func (c *Config) GetLineChannelSecret() string      { return c.LineChannelSecret }
func (c *Config) GetLineChannelAccessToken() string { return c.LineChannelAccessToken }
func (c *Config) GetLineAdminUserID() string        { return c.LineAdminUserID }

// GeminiConfig implementation
func (c *Config) GetGeminiAPIKey() string      { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string       { return c.GeminiModel }
func (c *Config) GetGeminiVisionModel() string { return c.GeminiVisionModel }

// PricingConfig implementation
func (c *Config) GetShippingCost() int        { return c.ShippingCost }
func (c *Config) GetMinimumProfit() int       { return c.MinimumProfit }
func (c *Config) GetPlatformFeeRate() float64 { return c.PlatformFeeRate }

// SessionConfig implementation
func (c *Config) GetSessionTimeout() time.Duration { return c.SessionTimeout }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string            { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string           { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string           { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool                { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketProductImages() string { return c.MinioBucketProductImages }
func (c *Config) IsMinIOEnabled() bool                { return c.MinIOEndpoint != "" }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string          { return c.RedisURL }
func (c *Config) GetWeeklyReportCron() string  { return c.WeeklyReportCron }
func (c *Config) GetMonthlyReportCron() string { return c.MonthlyReportCron }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		LineChannelSecret:      getEnv("LINE_CHANNEL_SECRET", ""),
		LineChannelAccessToken: getEnv("LINE_CHANNEL_ACCESS_TOKEN", ""),
		LineAdminUserID:        getEnv("LINE_ADMIN_USER_ID", ""),

		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiVisionModel: getEnv("GEMINI_VISION_MODEL", "gemini-2.0-flash"),

		ShippingCost:    mustInt(getEnv("SHIPPING_COST", "500")),
		MinimumProfit:   mustInt(getEnv("MINIMUM_PROFIT", "200")),
		PlatformFeeRate: mustFloat(getEnv("PLATFORM_FEE_RATE", "0.10")),

		SessionTimeout: time.Duration(mustInt(getEnv("SESSION_TIMEOUT_MINUTES", "30"))) * time.Minute,

		CORSAllowAll:   corsAllowAll,
		CORSOrigins:    corsOrigins,
		CORSAllowCreds: strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),

		MinIOEndpoint:            getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:           getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:           getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:              strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinioBucketProductImages: getEnv("MINIO_BUCKET_PRODUCT_IMAGES", "product-images"),

		RedisURL:          getEnv("REDIS_URL", ""),
		WeeklyReportCron:  getEnv("WEEKLY_REPORT_CRON", "0 9 * * 1"),
		MonthlyReportCron: getEnv("MONTHLY_REPORT_CRON", "0 9 1 * *"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.LineChannelSecret == "" || cfg.LineChannelAccessToken == "" {
		return nil, fmt.Errorf("LINE_CHANNEL_SECRET and LINE_CHANNEL_ACCESS_TOKEN are required")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.PlatformFeeRate <= 0 || cfg.PlatformFeeRate >= 1 {
		return nil, fmt.Errorf("PLATFORM_FEE_RATE must be between 0 and 1")
	}
	if cfg.SessionTimeout <= 0 {
		return nil, fmt.Errorf("SESSION_TIMEOUT_MINUTES must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
