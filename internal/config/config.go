package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Backend kinds selectable with BACKEND.
const (
	BackendAPI      = "api"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Environment string `mapstructure:"ENV"`
	Backend     string `mapstructure:"BACKEND"`

	APIBaseURL     string        `mapstructure:"API_BASE_URL"`
	APIToken       string        `mapstructure:"API_TOKEN"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	DBDSN      string `mapstructure:"DB_DSN"`
	DBMaxConns int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns int32  `mapstructure:"DB_MIN_CONNS"`

	HTTPAddr        string        `mapstructure:"HTTP_ADDR"`
	TelegramToken   string        `mapstructure:"TELEGRAM_TOKEN"`
	Timezone        string        `mapstructure:"PRACTICE_TIMEZONE"`
	RefreshInterval time.Duration `mapstructure:"REFRESH_INTERVAL"`
}

// Load reads .env when present, then the environment. Only malformed
// values fail here; what a command needs is checked by the Require helpers.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Environment:   getenv("ENV", "development"),
		Backend:       getenv("BACKEND", BackendAPI),
		APIBaseURL:    os.Getenv("API_BASE_URL"),
		APIToken:      os.Getenv("API_TOKEN"),
		DBDSN:         os.Getenv("DB_DSN"),
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		Timezone:      getenv("PRACTICE_TIMEZONE", "Europe/Berlin"),
	}

	var err error
	if cfg.RequestTimeout, err = durationEnv("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = durationEnv("REFRESH_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.DBMaxConns, err = int32Env("DB_MAX_CONNS", 10); err != nil {
		return nil, err
	}
	if cfg.DBMinConns, err = int32Env("DB_MIN_CONNS", 2); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case BackendAPI, BackendPostgres, BackendMemory:
	default:
		return nil, fmt.Errorf("BACKEND must be one of api, postgres, memory, got %q", cfg.Backend)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location resolves PRACTICE_TIMEZONE.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("PRACTICE_TIMEZONE: %w", err)
	}
	return loc, nil
}

func (c *Config) RequireDB() error {
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required but not set")
	}
	return nil
}

func (c *Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}
	return nil
}

// RequireBackend checks what the selected BACKEND needs.
func (c *Config) RequireBackend() error {
	switch c.Backend {
	case BackendAPI:
		if c.APIBaseURL == "" {
			return fmt.Errorf("API_BASE_URL is required for BACKEND=api")
		}
	case BackendPostgres:
		return c.RequireDB()
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, raw)
	}
	return d, nil
}

func int32Env(key string, fallback int32) (int32, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, raw)
	}
	return int32(n), nil
}
