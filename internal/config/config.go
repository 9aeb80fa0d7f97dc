package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
)

// Config holds every runtime option of the service. It is built once at
// startup and injected into the components that need it, so nothing reads
// the environment after Load returns.
type Config struct {
	AppName string `yaml:"app_name"`
	Env     string `yaml:"env"`
	Port    string `yaml:"port"`
	BaseURL string `yaml:"base_url"`

	// External SSO provider
	SSOAPIURL             string        `yaml:"sso_api_url"`
	SSOClientID           string        `yaml:"sso_client_id"`
	SSOTimeout            time.Duration `yaml:"sso_timeout"`
	SSOInsecureSkipVerify bool          `yaml:"sso_insecure_skip_verify"`

	// PEM-encoded RSA public key of the provider. When set, callback tokens
	// are signature-verified before their claims are trusted.
	ProviderPublicKey string `yaml:"provider_public_key"`

	// Stores. Empty RedisAddr selects the in-memory session store, empty
	// DatabasePath the in-memory user store.
	RedisAddr    string        `yaml:"redis_addr"`
	DatabasePath string        `yaml:"database_path"`
	SessionTTL   time.Duration `yaml:"session_ttl"`

	// Seeded super-admin account
	SeedAdminEmail    string `yaml:"seed_admin_email"`
	SeedAdminPassword string `yaml:"seed_admin_password"`
}

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	baseURLVar    = "BASE_URL"
	configFileVar = "CONFIG_FILE"
)

// Load builds a Config from defaults, an optional YAML file named by
// CONFIG_FILE, and finally environment variable overrides.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv(configFileVar); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("[config Load] failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("[config Load] failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if cfg.Port != "" && cfg.Port[0] != ':' {
		cfg.Port = fmt.Sprintf(":%s", cfg.Port)
	}

	return cfg, nil
}

func defaults() Config {
	return Config{
		AppName:    "SIMARIS Auth",
		Env:        "DEV",
		Port:       "8080",
		BaseURL:    "http://localhost:8080",
		SSOTimeout: 5 * time.Second,
		SessionTTL: 24 * time.Hour,
	}
}

func (c *Config) applyEnv() {
	c.AppName = GetEnv(appNameVar, c.AppName)
	c.Env = GetEnv("ENV", c.Env)
	c.Port = GetEnv(portEnvVar, c.Port)
	c.BaseURL = GetEnv(baseURLVar, c.BaseURL)

	c.SSOAPIURL = GetEnv("SSO_API_URL", c.SSOAPIURL)
	c.SSOClientID = GetEnv("SSO_CLIENT_ID", c.SSOClientID)
	c.SSOTimeout = getEnvDuration("SSO_TIMEOUT", c.SSOTimeout)
	c.SSOInsecureSkipVerify = getEnvBool("SSO_INSECURE_SKIP_VERIFY", c.SSOInsecureSkipVerify)
	c.ProviderPublicKey = GetEnv("PROVIDER_PUBLIC_KEY", c.ProviderPublicKey)

	c.RedisAddr = GetEnv("REDIS_ADDR", c.RedisAddr)
	c.DatabasePath = GetEnv("DATABASE_PATH", c.DatabasePath)
	c.SessionTTL = getEnvDuration("SESSION_TTL", c.SessionTTL)

	c.SeedAdminEmail = GetEnv("SEED_ADMIN_EMAIL", c.SeedAdminEmail)
	c.SeedAdminPassword = GetEnv("SEED_ADMIN_PASSWORD", c.SeedAdminPassword)
}

// Validate reports configuration that cannot support the SSO flow.
func (c Config) Validate() error {
	if c.SSOAPIURL == "" {
		return fmt.Errorf("[config Validate] SSO_API_URL is required")
	}
	if c.SSOClientID == "" {
		return fmt.Errorf("[config Validate] SSO_CLIENT_ID is required")
	}
	return nil
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func getEnvBool(envVar string, defaultValue bool) bool {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
