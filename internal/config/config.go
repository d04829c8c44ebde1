package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the back-office API.
type Config struct {
	AppName        string
	AppEnv         string
	AppPort        string
	DatabaseURL    string
	RedisURL       string
	NATSURL        string
	EventNamespace string
	JWTSecret      string
	FilterCacheTTL time.Duration
	SweepInterval  time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and an optional
// .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CITYHUB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "CityHub API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("events.namespace", "cityhub")
	v.SetDefault("filter.cache_ttl", "5m")
	v.SetDefault("sweep.interval", "24h")

	filterTTL, err := time.ParseDuration(v.GetString("filter.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid filter cache ttl: %w", err)
	}

	sweepInterval, err := time.ParseDuration(v.GetString("sweep.interval"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid sweep interval: %w", err)
	}
	if sweepInterval <= 0 {
		sweepInterval = 24 * time.Hour
	}

	cfg := Config{
		AppName:        v.GetString("app.name"),
		AppEnv:         v.GetString("app.env"),
		AppPort:        v.GetString("app.port"),
		DatabaseURL:    v.GetString("database.url"),
		RedisURL:       v.GetString("redis.url"),
		NATSURL:        v.GetString("nats.url"),
		EventNamespace: v.GetString("events.namespace"),
		JWTSecret:      v.GetString("jwt.secret"),
		FilterCacheTTL: filterTTL,
		SweepInterval:  sweepInterval,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}
