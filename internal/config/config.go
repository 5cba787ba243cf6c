package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kevin07696/payout-validation/internal/adapters/secrets"
	"github.com/kevin07696/payout-validation/internal/domain/ports"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Policy   PolicyConfig
	Secrets  secrets.Config
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int
	Host            string
	MetricsPort     int
	RateLimitRPS    float64
	RateLimitBurst  int
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration. The database is optional:
// with no host the service runs without payee lookups or report archiving.
type DatabaseConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	PasswordSecret string // secret path resolved through the secret store
	Database       string
	SSLMode        string
	MaxConns       int32
	MinConns       int32
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// PolicyConfig points at an optional YAML policy file
type PolicyConfig struct {
	Path string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			MetricsPort:     getEnvAsInt("METRICS_PORT", 9090),
			RateLimitRPS:    getEnvAsFloat("RATE_LIMIT_RPS", 20),
			RateLimitBurst:  getEnvAsInt("RATE_LIMIT_BURST", 40),
			AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
			ShutdownTimeout: time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", ""),
			Port:           getEnvAsInt("DB_PORT", 5432),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", ""),
			PasswordSecret: getEnv("DB_PASSWORD_SECRET", ""),
			Database:       getEnv("DB_NAME", "payout_validation"),
			SSLMode:        getEnv("DB_SSL_MODE", "disable"),
			MaxConns:       int32(getEnvAsInt("DB_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("DB_MIN_CONNS", 2)),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
		Policy: PolicyConfig{
			Path: getEnv("POLICY_FILE", ""),
		},
		Secrets: secrets.Config{
			Backend:   getEnv("SECRETS_BACKEND", secrets.BackendNone),
			LocalPath: getEnv("SECRETS_LOCAL_PATH", "./secrets"),
			AWS: secrets.AWSConfig{
				Region:   getEnv("AWS_REGION", "us-east-1"),
				Profile:  getEnv("AWS_PROFILE", ""),
				Endpoint: getEnv("AWS_SECRETS_ENDPOINT", ""),
			},
			Vault: secrets.VaultConfig{
				Address:    getEnv("VAULT_ADDR", "http://127.0.0.1:8200"),
				AuthMethod: getEnv("VAULT_AUTH_METHOD", "token"),
				Token:      getEnv("VAULT_TOKEN", ""),
				RoleID:     getEnv("VAULT_ROLE_ID", ""),
				SecretID:   getEnv("VAULT_SECRET_ID", ""),
				Namespace:  getEnv("VAULT_NAMESPACE", ""),
				MountPath:  getEnv("VAULT_MOUNT_PATH", "secret"),
				KVVersion:  getEnv("VAULT_KV_VERSION", "v2"),
			},
		},
	}

	ttl := time.Duration(getEnvAsInt("SECRETS_CACHE_TTL_SECONDS", 300)) * time.Second
	cfg.Secrets.AWS.CacheTTL = ttl
	cfg.Secrets.Vault.CacheTTL = ttl

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and ranges
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT %d is out of range", c.Server.Port)
	}
	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("METRICS_PORT %d is out of range", c.Server.MetricsPort)
	}
	if c.Server.MetricsPort == c.Server.Port {
		return fmt.Errorf("METRICS_PORT must differ from SERVER_PORT")
	}
	if c.Server.RateLimitRPS <= 0 || c.Server.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.Database.Enabled() && c.Database.Password == "" && c.Database.PasswordSecret == "" {
		return fmt.Errorf("DB_PASSWORD or DB_PASSWORD_SECRET is required when DB_HOST is set")
	}
	if c.Database.PasswordSecret != "" && c.Secrets.Backend == secrets.BackendNone {
		return fmt.Errorf("DB_PASSWORD_SECRET requires SECRETS_BACKEND")
	}
	return nil
}

// Enabled reports whether a database is configured
func (c *DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// ResolvePassword fills Password from the secret store when PasswordSecret is
// set. An explicit DB_PASSWORD wins.
func (c *DatabaseConfig) ResolvePassword(ctx context.Context, store ports.SecretStore) error {
	if c.Password != "" || c.PasswordSecret == "" {
		return nil
	}
	if store == nil {
		return fmt.Errorf("no secret store configured for %s", c.PasswordSecret)
	}
	secret, err := store.GetSecret(ctx, c.PasswordSecret)
	if err != nil {
		return fmt.Errorf("failed to resolve database password: %w", err)
	}
	c.Password = secret.Value
	return nil
}

// ConnectionString returns a PostgreSQL URL
func (c *DatabaseConfig) ConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
