package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"
)

const minAPIKeyLength = 16

var loginIDPattern = regexp.MustCompile(`^[A-Za-z0-9._+@-]+$`)

// Config holds the application configuration
type Config struct {
	// Blastengine credentials
	LoginID string
	APIKey  string

	// Default sender, used when a request omits its own
	DefaultFromAddress string
	DefaultFromName    string

	// Provider client settings
	BaseURL            string
	HTTPTimeoutSeconds int
	MaxRetries         int

	// Local delivery log
	DeliveryLogPath string

	LogLevel string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		LoginID:            getEnv("BLASTENGINE_LOGIN_ID", ""),
		APIKey:             getEnv("BLASTENGINE_API_KEY", ""),
		DefaultFromAddress: getEnv("DEFAULT_FROM_ADDRESS", ""),
		DefaultFromName:    getEnv("DEFAULT_FROM_NAME", ""),
		BaseURL:            getEnv("BLASTENGINE_BASE_URL", ""),
		HTTPTimeoutSeconds: getEnvInt("HTTP_TIMEOUT_SECONDS", 15),
		MaxRetries:         getEnvInt("MAX_RETRIES", 2),
		DeliveryLogPath:    getEnv("DELIVERY_LOG_PATH", "data/deliveries.db"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
	return cfg, nil
}

// Validate validates the configuration. Credential shape problems are fatal
// to activation; the key value itself never appears in an error.
func (c *Config) Validate() error {
	if c.LoginID == "" {
		return fmt.Errorf("BLASTENGINE_LOGIN_ID is required")
	}
	if !loginIDPattern.MatchString(c.LoginID) {
		return fmt.Errorf("BLASTENGINE_LOGIN_ID has an invalid format")
	}
	if c.APIKey == "" {
		return fmt.Errorf("BLASTENGINE_API_KEY is required")
	}
	if len(c.APIKey) < minAPIKeyLength {
		return fmt.Errorf("BLASTENGINE_API_KEY is too short (expected at least %d characters)", minAPIKeyLength)
	}
	if c.HTTPTimeoutSeconds < 1 || c.HTTPTimeoutSeconds > 300 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be between 1 and 300")
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("MAX_RETRIES must be between 0 and 10")
	}
	if c.DeliveryLogPath == "" {
		return fmt.Errorf("DELIVERY_LOG_PATH is required")
	}
	return nil
}

// Timeout returns the per-call HTTP timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
