package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the portal API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	JWTSecret              string
	TokenTTL               time.Duration
	StorageDriver          string
	UploadDir              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	DashboardCacheTTL      time.Duration
	LoginRateLimit         int
	LoginRateWindow        time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PORTAL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Campus Portal API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("storage.driver", "local")
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("cloudinary.folder", "portal/assignments")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("login.rate_limit", 10)
	v.SetDefault("login.rate_window", "1m")

	tokenTTL, err := parseDuration(v.GetString("jwt.ttl"), "24h")
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt ttl: %w", err)
	}

	cacheTTL, err := parseDuration(v.GetString("dashboard.cache_ttl"), "5m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	rateWindow, err := parseDuration(v.GetString("login.rate_window"), "1m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid login rate window: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		TokenTTL:               tokenTTL,
		StorageDriver:          strings.ToLower(v.GetString("storage.driver")),
		UploadDir:              v.GetString("upload.dir"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		DashboardCacheTTL:      cacheTTL,
		LoginRateLimit:         v.GetInt("login.rate_limit"),
		LoginRateWindow:        rateWindow,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.LoginRateLimit <= 0 {
		cfg.LoginRateLimit = 10
	}

	return cfg, nil
}

func parseDuration(value, fallback string) (time.Duration, error) {
	if value == "" {
		value = fallback
	}
	return time.ParseDuration(value)
}
