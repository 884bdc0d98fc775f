// Package config handles loading and validation of client configuration.
// Values come from .env, STOREFRONT_* environment variables and an optional
// CONFIG_FILE; production can pull a service token from Secret Manager.
package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces every environment variable.
const EnvPrefix = "STOREFRONT"

// State backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// TLS fingerprints.
const (
	FingerprintChrome = "chrome"
	FingerprintGo     = "go"
)

// Config holds all client configuration.
type Config struct {
	// Backend settings
	Origin     string        `envconfig:"ORIGIN" yaml:"origin"`
	APIBaseURL string        `envconfig:"API_BASE_URL" yaml:"api_base_url"`
	APIVersion string        `envconfig:"API_VERSION" default:"v1" yaml:"api_version"`
	LoginPath  string        `envconfig:"LOGIN_PATH" default:"/login" yaml:"login_path"`
	Timeout    time.Duration `envconfig:"TIMEOUT" default:"30s" yaml:"timeout"`

	// TLSFingerprint is "chrome" (uTLS) or "go" (crypto/tls).
	TLSFingerprint string `envconfig:"TLS_FINGERPRINT" default:"chrome" yaml:"tls_fingerprint"`

	Environment string `envconfig:"ENVIRONMENT" default:"development" yaml:"environment"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" yaml:"log_level"`

	// Port is where serve-mcp listens.
	Port string `envconfig:"PORT" default:"8080" yaml:"port"`

	// GCP settings (production service token)
	GCPProject  string `envconfig:"GCP_PROJECT" yaml:"gcp_project"`
	TokenSecret string `envconfig:"TOKEN_SECRET" yaml:"token_secret"`
	// ServiceToken authenticates unattended callers (serve-mcp). Loaded from
	// Secret Manager when TokenSecret is set.
	ServiceToken string `envconfig:"SERVICE_TOKEN" yaml:"-"`

	State StateConfig `ignored:"true" yaml:"state"`
}

// StateConfig selects where the session and guest collections persist.
type StateConfig struct {
	Backend       string `envconfig:"STATE_BACKEND" default:"sqlite" yaml:"backend"`
	Path          string `envconfig:"STATE_PATH" yaml:"path"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379" yaml:"redis_addr"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" yaml:"redis_password"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0" yaml:"redis_db"`
}

// Load reads configuration.
// Priority: CONFIG_FILE → STOREFRONT_* env (and .env) → defaults, then the
// Secret Manager token in production.
func Load(ctx context.Context) (*Config, error) {
	// Missing .env is fine
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}
	// State keys are flat: STOREFRONT_STATE_BACKEND, STOREFRONT_REDIS_ADDR.
	if err := envconfig.Process(EnvPrefix, &cfg.State); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, err
		}
	}

	if cfg.State.Backend == BackendSQLite && cfg.State.Path == "" {
		cfg.State.Path = defaultStatePath()
	}

	if cfg.TokenSecret != "" && cfg.Environment == "production" {
		if cfg.GCPProject == "" {
			return nil, fmt.Errorf("GCP_PROJECT required to load TOKEN_SECRET")
		}
		if err := cfg.loadFromSecretManager(ctx); err != nil {
			return nil, fmt.Errorf("loading service token: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadFromFile overlays a YAML or JSON file onto cfg. Keys absent from the
// file keep their env/default values. JSON parses as YAML.
func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// loadFromSecretManager fetches the service token.
// Secret name format: projects/{project}/secrets/{token_secret}/versions/latest
func (c *Config) loadFromSecretManager(ctx context.Context) error {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	secretName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", c.GCPProject, c.TokenSecret)

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		return fmt.Errorf("accessing secret %s: %w", secretName, err)
	}

	c.ServiceToken = strings.TrimSpace(string(result.Payload.Data))
	return nil
}

// validate checks that the configuration is usable.
func (c *Config) validate() error {
	if c.Origin == "" && c.APIBaseURL == "" {
		return fmt.Errorf("origin is required")
	}
	if c.Origin != "" {
		if err := checkURL("origin", c.Origin); err != nil {
			return err
		}
	}
	if c.APIBaseURL != "" {
		if err := checkURL("api_base_url", c.APIBaseURL); err != nil {
			return err
		}
	}
	if !semver.IsValid(c.APIVersion) {
		return fmt.Errorf("invalid api_version %q: want a semver major such as v1", c.APIVersion)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	switch c.TLSFingerprint {
	case FingerprintChrome, FingerprintGo:
	default:
		return fmt.Errorf("invalid tls_fingerprint %q: want chrome or go", c.TLSFingerprint)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	switch c.State.Backend {
	case BackendSQLite:
		if c.State.Path == "" {
			return fmt.Errorf("state path is required for sqlite backend")
		}
	case BackendRedis:
		if c.State.RedisAddr == "" {
			return fmt.Errorf("redis_addr is required for redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("invalid state backend %q: want sqlite, redis or memory", c.State.Backend)
	}

	return nil
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func checkURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("invalid %s %q: want an absolute http(s) URL", field, raw)
	}
	return nil
}

// defaultStatePath is $XDG_CONFIG_HOME/storefront/state.db, falling back to
// the working directory when no config dir is known.
func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "storefront-state.db"
	}
	return filepath.Join(dir, "storefront", "state.db")
}
