package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// Insight summary generation (OpenAI-compatible endpoint, optional)
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// Object storage
	S3Bucket  string
	AWSRegion string

	// Days ahead the expiring-soon listing covers by default
	ExpiryWindowDays int
}

// LoadConfig builds a Config from environment variables, falling back to
// Docker secrets for sensitive values.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerPort: getValue("SERVER_PORT", "server_port", "8080"),
		ServerHost: getValue("SERVER_HOST", "server_host", "0.0.0.0"),

		DBHost:     getValue("DB_HOST", "db_host", "localhost"),
		DBPort:     getValue("DB_PORT", "db_port", "5432"),
		DBUser:     getValue("DB_USER", "db_user", "postgres"),
		DBPassword: getValue("DB_PASSWORD", "db_password", ""),
		DBName:     getValue("DB_NAME", "db_name", "opsboard"),
		DBSSLMode:  getValue("DB_SSL_MODE", "db_ssl_mode", "disable"),

		RedisHost:     getValue("REDIS_HOST", "redis_host", "localhost"),
		RedisPort:     getValue("REDIS_PORT", "redis_port", "6379"),
		RedisPassword: getValue("REDIS_PASSWORD", "redis_password", ""),
		RedisURL:      getValue("REDIS_URL", "redis_url", ""),

		JWTSecret: getValue("JWT_SECRET", "jwt_secret", ""),

		OpenAIAPIKey:  getValue("OPENAI_API_KEY", "openai_api_key", ""),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),

		S3Bucket:  os.Getenv("S3_BUCKET_NAME"),
		AWSRegion: os.Getenv("AWS_REGION"),
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB value %q: %w", v, err)
		}
		cfg.RedisDB = n
	}

	cfg.ExpiryWindowDays = 7
	if v := os.Getenv("EXPIRY_WINDOW_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid EXPIRY_WINDOW_DAYS value %q: %w", v, err)
		}
		cfg.ExpiryWindowDays = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that values required in the current environment are present.
func (c *Config) Validate() error {
	var missing []string

	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if IsProduction() {
		if c.DBPassword == "" {
			missing = append(missing, "DB_PASSWORD")
		}
		if c.DBSSLMode == "disable" {
			return fmt.Errorf("DB_SSL_MODE must not be 'disable' in production")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("required configuration missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

// getValue resolves a configuration value from the environment, then from a
// Docker secret file, then from the default.
func getValue(envVar, secretName, def string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	if v := readSecret(secretName); v != "" {
		return v
	}
	return def
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
