// Package config handles external configuration loading from JSON and environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Debug      bool       `json:"debug"`
	Server     Server     `json:"server"`
	Database   Database   `json:"database"`
	Business   Business   `json:"business"`
	Rotation   Rotation   `json:"rotation"`
	Stripe     Stripe     `json:"stripe"`
	SMTP       SMTP       `json:"smtp"`
	Newsletter Newsletter `json:"newsletter"`
	Features   Features   `json:"features"`
	JWT        JWT        `json:"jwt"`
	RedisURL   string     `json:"redisUrl"`
}

// Server holds HTTP server configuration
type Server struct {
	Port         int    `json:"port"`
	Host         string `json:"host"`
	ReadTimeout  int    `json:"readTimeout"`
	WriteTimeout int    `json:"writeTimeout"`
	BaseURL      string `json:"baseUrl"`
}

// Database holds database configuration
type Database struct {
	Path string `json:"path"`
}

// Business holds branding and site information
type Business struct {
	Name          string `json:"name"`
	Tagline       string `json:"tagline"`
	Logo          string `json:"logo"`
	ContactEmail  string `json:"contactEmail"`
	OperatorEmail string `json:"operatorEmail"`
}

// Rotation controls ad/spotlight rotation behavior. The daily shuffle rolls
// over at midnight in Timezone, not at whatever zone the host happens to
// run in.
type Rotation struct {
	Timezone string `json:"timezone"`
	RecentN  int    `json:"recentN"`
}

// Stripe holds payment provider configuration
type Stripe struct {
	SecretKey     string `json:"secretKey"`
	WebhookSecret string `json:"webhookSecret"`
	Currency      string `json:"currency"`
}

// SMTP holds email relay configuration
type SMTP struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	From     string `json:"from"`
}

// Newsletter holds the subscription provider configuration
type Newsletter struct {
	BaseURL string `json:"baseUrl"`
	APIKey  string `json:"apiKey"`
}

// Features holds feature toggles
type Features struct {
	Shop       bool `json:"shop"`
	Newsletter bool `json:"newsletter"`
	Ads        bool `json:"ads"`
}

// JWT holds JWT configuration
type JWT struct {
	Secret          string `json:"secret"`
	ExpirationHours int    `json:"expirationHours"`
}

// Load reads configuration from the specified JSON file and overrides with environment variables
func Load(configPath string) (*Config, error) {
	var cfg Config

	cleanPath := filepath.Clean(configPath)

	data, err := os.ReadFile(cleanPath)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If file doesn't exist, we continue with empty config and rely on Env Vars

	cfg.applyEnvOverrides()

	// Set defaults if missing (e.g. for purely env-based config)
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.JWT.ExpirationHours == 0 {
		cfg.JWT.ExpirationHours = 24
	}
	if cfg.Rotation.Timezone == "" {
		cfg.Rotation.Timezone = "UTC"
	}
	if cfg.Rotation.RecentN == 0 {
		cfg.Rotation.RecentN = 5
	}
	if cfg.Stripe.Currency == "" {
		cfg.Stripe.Currency = "usd"
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides overrides config values with environment variables if set
func (c *Config) applyEnvOverrides() {
	if debug := os.Getenv("DEBUG"); debug != "" {
		c.Debug = debug == "true" || debug == "1"
	}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		c.Server.BaseURL = baseURL
	}

	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		c.Database.Path = dbPath
	}

	// Secrets should come from the environment in production
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
	if key := os.Getenv("STRIPE_SECRET_KEY"); key != "" {
		c.Stripe.SecretKey = key
	}
	if secret := os.Getenv("STRIPE_WEBHOOK_SECRET"); secret != "" {
		c.Stripe.WebhookSecret = secret
	}
	if pass := os.Getenv("SMTP_PASSWORD"); pass != "" {
		c.SMTP.Password = pass
	}
	if key := os.Getenv("NEWSLETTER_API_KEY"); key != "" {
		c.Newsletter.APIKey = key
	}
	if url := os.Getenv("REDIS_URL"); url != "" {
		c.RedisURL = url
	}
	if tz := os.Getenv("ROTATION_TZ"); tz != "" {
		c.Rotation.Timezone = tz
	}
}

// validate checks that all required configuration values are present
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	cleanDBPath := filepath.Clean(c.Database.Path)
	if !filepath.IsLocal(cleanDBPath) && !filepath.IsAbs(cleanDBPath) {
		return fmt.Errorf("invalid database path: potential path traversal detected")
	}

	if c.JWT.Secret == "" || c.JWT.Secret == "CHANGE_THIS_SECRET_IN_PRODUCTION" {
		if !c.Debug {
			return fmt.Errorf("JWT secret must be changed for production")
		}
	}

	if c.JWT.ExpirationHours <= 0 {
		c.JWT.ExpirationHours = 24
	}

	if _, err := time.LoadLocation(c.Rotation.Timezone); err != nil {
		return fmt.Errorf("invalid rotation timezone %q: %w", c.Rotation.Timezone, err)
	}

	return nil
}

// Address returns the full server address (host:port)
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetDatabasePath returns the cleaned and validated database path
func (c *Config) GetDatabasePath() string {
	return filepath.Clean(c.Database.Path)
}

// RotationLocation returns the timezone the daily rotation is pinned to.
// Load has already validated it.
func (c *Config) RotationLocation() *time.Location {
	loc, err := time.LoadLocation(c.Rotation.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
