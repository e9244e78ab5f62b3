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
	Environment Environment

	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration. DatabaseURL wins over the discrete fields.
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// Redis configuration, optional. The generation rate limiter is off without it.
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Completion service
	CompletionAPIURL string
	CompletionAPIKey string
	CompletionModel  string

	// App Store purchase verification
	AppleVerifyURL    string
	AppleSandboxURL   string
	AppleSharedSecret string
	AppleRootCAPath   string

	// Identity provider admin API
	IdentityAdminURL   string
	IdentityServiceKey string

	// Outbound mail
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SupportEmail string

	// Purchase payload archive
	S3BucketName string
	AWSRegion    string

	CORSAllowedOrigins []string
	RateLimitPerHour   int
	LabelUniqueNames   bool

	LogLevel  string
	LogFormat string
}

// lookupFunc resolves a setting from its environment variable and docker secret names
type lookupFunc func(envKey, secretName string) string

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{Environment: env}

	switch env {
	case CI:
		if err := loadCIConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load CI configuration: %w", err)
		}
	case Development, Test:
		if err := loadDevConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load development configuration: %w", err)
		}
	case Production:
		if err := loadProdConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load production configuration: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadCIConfig reads only environment variables; CI has no secrets directory
func loadCIConfig(cfg *Config) error {
	return fill(cfg, func(envKey, _ string) string {
		return os.Getenv(envKey)
	})
}

// loadDevConfig prefers environment variables and falls back to docker secrets
func loadDevConfig(cfg *Config) error {
	return fill(cfg, func(envKey, secretName string) string {
		if v := os.Getenv(envKey); v != "" {
			return v
		}
		return readSecret(secretName)
	})
}

// loadProdConfig prefers docker secrets and falls back to environment variables
func loadProdConfig(cfg *Config) error {
	return fill(cfg, func(envKey, secretName string) string {
		if v := readSecret(secretName); v != "" {
			return v
		}
		return os.Getenv(envKey)
	})
}

func fill(cfg *Config, get lookupFunc) error {
	var err error

	cfg.ServerPort = withDefault(get("SERVER_PORT", "server_port"), "8080")
	cfg.ServerHost = withDefault(get("SERVER_HOST", "server_host"), "0.0.0.0")

	cfg.DatabaseURL = get("DATABASE_URL", "database_url")
	cfg.DBHost = withDefault(get("DB_HOST", "db_host"), "localhost")
	cfg.DBPort = withDefault(get("DB_PORT", "db_port"), "5432")
	cfg.DBUser = withDefault(get("DB_USER", "db_user"), "postgres")
	cfg.DBPassword = get("DB_PASSWORD", "db_password")
	cfg.DBName = withDefault(get("DB_NAME", "db_name"), "kodawari")
	cfg.DBSSLMode = withDefault(get("DB_SSL_MODE", "db_ssl_mode"), "disable")

	cfg.RedisURL = get("REDIS_URL", "redis_url")
	cfg.RedisHost = get("REDIS_HOST", "redis_host")
	cfg.RedisPort = withDefault(get("REDIS_PORT", "redis_port"), "6379")
	cfg.RedisPassword = get("REDIS_PASSWORD", "redis_password")
	cfg.RedisDB = 0 // This is a constant, not a secret

	cfg.CompletionAPIURL = withDefault(get("COMPLETION_API_URL", "completion_api_url"), "https://api.openai.com/v1/chat/completions")
	cfg.CompletionAPIKey = get("COMPLETION_API_KEY", "completion_api_key")
	cfg.CompletionModel = withDefault(get("COMPLETION_MODEL", "completion_model"), "gpt-4o-mini")

	cfg.AppleVerifyURL = withDefault(get("APPLE_VERIFY_URL", "apple_verify_url"), "https://buy.itunes.apple.com/verifyReceipt")
	cfg.AppleSandboxURL = withDefault(get("APPLE_SANDBOX_URL", "apple_sandbox_url"), "https://sandbox.itunes.apple.com/verifyReceipt")
	cfg.AppleSharedSecret = get("APPLE_SHARED_SECRET", "apple_shared_secret")
	cfg.AppleRootCAPath = get("APPLE_ROOT_CA_PATH", "apple_root_ca_path")

	cfg.IdentityAdminURL = get("IDENTITY_ADMIN_URL", "identity_admin_url")
	cfg.IdentityServiceKey = get("IDENTITY_SERVICE_KEY", "identity_service_key")

	cfg.SMTPHost = get("SMTP_HOST", "smtp_host")
	if cfg.SMTPPort, err = intSetting(get("SMTP_PORT", "smtp_port"), 587); err != nil {
		return ValidationError{Field: "SMTP_PORT", Message: err.Error()}
	}
	cfg.SMTPUser = get("SMTP_USER", "smtp_user")
	cfg.SMTPPassword = get("SMTP_PASSWORD", "smtp_password")
	cfg.SupportEmail = get("SUPPORT_EMAIL", "support_email")

	cfg.S3BucketName = get("S3_BUCKET_NAME", "s3_bucket_name")
	cfg.AWSRegion = withDefault(get("AWS_REGION", "aws_region"), "ap-northeast-1")

	cfg.CORSAllowedOrigins = splitList(withDefault(get("CORS_ALLOWED_ORIGINS", "cors_allowed_origins"), "http://localhost:3000"))
	if cfg.RateLimitPerHour, err = intSetting(get("RATE_LIMIT_PER_HOUR", "rate_limit_per_hour"), 30); err != nil {
		return ValidationError{Field: "RATE_LIMIT_PER_HOUR", Message: err.Error()}
	}
	if v := get("LABEL_UNIQUE_NAMES", "label_unique_names"); v != "" {
		if cfg.LabelUniqueNames, err = strconv.ParseBool(v); err != nil {
			return ValidationError{Field: "LABEL_UNIQUE_NAMES", Message: err.Error()}
		}
	}

	cfg.LogLevel = withDefault(get("LOG_LEVEL", "log_level"), "info")
	defaultFormat := "console"
	if cfg.Environment == Production {
		defaultFormat = "json"
	}
	cfg.LogFormat = withDefault(get("LOG_FORMAT", "log_format"), defaultFormat)

	return nil
}

// DSN returns the postgres connection string
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// RedisEnabled reports whether any Redis connection setting was provided
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func intSetting(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("must be an integer, got %q", v)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
