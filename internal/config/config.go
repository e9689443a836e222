// Package config loads service configuration from an optional YAML file,
// a .env file, and environment variables. Environment always wins.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigPath is the default YAML config location.
const ConfigPath = "config.yaml"

const defaultSessionTTL = 24 * time.Hour

// FileConfig represents configuration loaded from YAML plus env overrides.
type FileConfig struct {
	Port             string `yaml:"port"`
	LogLevel         string `yaml:"logLevel"`
	RedisAddr        string `yaml:"redisAddr"`
	RedisPassword    string `yaml:"redisPassword"`
	DatabaseURL      string `yaml:"databaseURL"`
	SessionSecret    string `yaml:"sessionSecret"`
	SessionTTL       string `yaml:"sessionTTL"`
	GoogleAPIKey     string `yaml:"googleAPIKey"`
	GroqAPIKey       string `yaml:"groqAPIKey"`
	OpenRouterAPIKey string `yaml:"openRouterAPIKey"`
}

// Load reads config from path (defaults to config.yaml). A missing config
// file is fine — the service runs on defaults plus environment. A .env file
// in the working directory is loaded first, matching how the app is usually
// run locally.
func Load(path string) (FileConfig, error) {
	_ = godotenv.Load()

	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case os.IsNotExist(err):
		// Defaults + env only.
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	// Override with environment variables.
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("PROMPTFORGE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.SessionSecret = v
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		cfg.SessionTTL = v
	}
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		cfg.GoogleAPIKey = v
	}
	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		cfg.GroqAPIKey = v
	}
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		cfg.OpenRouterAPIKey = v
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.SessionTTL != "" {
		if _, err := time.ParseDuration(cfg.SessionTTL); err != nil {
			return cfg, fmt.Errorf("config: invalid sessionTTL %q: %w", cfg.SessionTTL, err)
		}
	}
	return cfg, nil
}

// ParsedSessionTTL returns the session TTL, defaulting to 24h.
func (c FileConfig) ParsedSessionTTL() time.Duration {
	if c.SessionTTL == "" {
		return defaultSessionTTL
	}
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return defaultSessionTTL
	}
	return d
}
