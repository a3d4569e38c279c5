package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Agent providers.
const (
	ProviderHTTP      = "http"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds all configuration for intelhub.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"3480"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	Log LogConfig `yaml:"log"`

	// Persistent key-value store holding the hub's collections
	Store StoreConfig `yaml:"store"`

	// PostgreSQL, used when store.backend is "postgres"
	Database DatabaseConfig `yaml:"database"`

	// Redis, used when store.backend is "redis"
	Redis RedisConfig `yaml:"redis"`

	// External discovery/report agents
	Agent AgentConfig `yaml:"agent"`

	// SampleMode starts the hub with the embedded demo dataset and persistence suspended.
	SampleMode bool `yaml:"sample_mode" env:"SAMPLE_MODE" env-default:"false"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	// Development switches to the human-readable console encoder.
	Development bool `yaml:"development" env:"LOG_DEVELOPMENT" env-default:"false"`
}

// StoreConfig selects and configures the persistent key-value backend.
type StoreConfig struct {
	Backend    string `yaml:"backend" env:"STORE_BACKEND" env-default:"sqlite"`
	KeyPrefix  string `yaml:"key_prefix" env:"STORE_KEY_PREFIX" env-default:"cihub:"`
	SQLitePath string `yaml:"sqlite_path" env:"STORE_SQLITE_PATH" env-default:"intelhub.db"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"intelhub"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"intelhub"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// AgentConfig configures the gateway to the discovery and report agents.
type AgentConfig struct {
	// Provider is one of "http", "openai" or "anthropic".
	Provider string `yaml:"provider" env:"AGENT_PROVIDER" env-default:"http"`
	// Endpoint is the agent service URL (http) or API base URL (openai).
	Endpoint string `yaml:"endpoint" env:"AGENT_ENDPOINT" env-default:""`
	APIKey   string `yaml:"-" env:"AGENT_API_KEY"` // Secret - not in YAML
	Model    string `yaml:"model" env:"AGENT_MODEL" env-default:""`

	DiscoveryAgentID string `yaml:"discovery_agent_id" env:"DISCOVERY_AGENT_ID" env-default:"699dce56c546a473136807dc"`
	ReportAgentID    string `yaml:"report_agent_id" env:"REPORT_AGENT_ID" env-default:"699dce67c546a473136807de"`

	// Timeout bounds a single agent call. Discovery runs can take minutes.
	Timeout time.Duration `yaml:"timeout" env:"AGENT_TIMEOUT" env-default:"5m"`

	MaxRetries       int           `yaml:"max_retries" env:"AGENT_MAX_RETRIES" env-default:"2"`
	BreakerThreshold int           `yaml:"breaker_threshold" env:"AGENT_BREAKER_THRESHOLD" env-default:"5"`
	BreakerReset     time.Duration `yaml:"breaker_reset" env:"AGENT_BREAKER_RESET" env-default:"30s"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// A missing config.yaml is not an error: configuration then comes from the
// environment and defaults alone.
func Load(version string) (*Config, error) {
	return LoadFile("config.yaml", version)
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.Database.Host = resolveHostForDocker(cfg.Database.Host)
	cfg.Redis.Host = resolveHostForDocker(cfg.Redis.Host)

	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

func (c *Config) validate() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case BackendMemory, BackendSQLite, BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	c.Agent.Provider = strings.ToLower(strings.TrimSpace(c.Agent.Provider))
	switch c.Agent.Provider {
	case ProviderHTTP:
		if c.Agent.Endpoint == "" {
			return fmt.Errorf("agent.endpoint is required for the http provider")
		}
	case ProviderOpenAI, ProviderAnthropic:
		if c.Agent.Model == "" {
			return fmt.Errorf("agent.model is required for the %s provider", c.Agent.Provider)
		}
	default:
		return fmt.Errorf("unknown agent provider %q", c.Agent.Provider)
	}

	if c.Agent.Timeout < 0 {
		return fmt.Errorf("agent.timeout must not be negative")
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection URL.
func (c *DatabaseConfig) ConnectionString() string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis host:port.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

var (
	isDockerOnce   sync.Once
	isDockerResult bool
)

// isRunningInDocker reports whether /.dockerenv exists. The result is cached.
func isRunningInDocker() bool {
	isDockerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		isDockerResult = err == nil
	})
	return isDockerResult
}

// resolveHostForDocker rewrites loopback hosts to host.docker.internal when
// running inside a container so local postgres/redis stay reachable.
func resolveHostForDocker(host string) string {
	if !isRunningInDocker() {
		return host
	}
	if host == "localhost" || host == "127.0.0.1" {
		return "host.docker.internal"
	}
	return host
}
