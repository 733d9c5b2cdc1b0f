package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the candidex API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Matching  MatchingConfig  `yaml:"matching"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// RateLimitConfig limits inbound HTTP requests per client IP.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"` // 0 = disabled
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds key-value store connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// PostgresConfig holds the shortlist transition log connection.
// An empty DSN keeps transitions in memory.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"max_conns"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// EmbeddingConfig holds embedding settings.
type EmbeddingConfig struct {
	Providers  map[string]ProviderConfig `yaml:"providers"`
	Vectorizer VectorizerConfig          `yaml:"vectorizer"`
	Retry      RetryConfig               `yaml:"retry"`
	Cache      CacheConfig               `yaml:"cache"`
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// ProviderConfig holds embedding provider settings.
type ProviderConfig struct {
	APIKey         string       `yaml:"api_key"`
	BaseURL        string       `yaml:"base_url"`
	RequestsPerSec float64      `yaml:"requests_per_sec"` // 0 = unlimited
	Budget         BudgetConfig `yaml:"budget"`
}

// VectorizerConfig holds vectorizer settings.
type VectorizerConfig struct {
	Provider          string `yaml:"provider"`
	Model             string `yaml:"model"`
	Dimensions        int    `yaml:"dimensions"`
	CandidateInstruct string `yaml:"candidate_instruction"`
	JobInstruct       string `yaml:"job_instruction"`
}

// RetryConfig holds the provider retry policy.
type RetryConfig struct {
	MaxRetries       int     `yaml:"max_retries"`
	BaseDelayMs      int     `yaml:"base_delay_ms"`
	Factor           float64 `yaml:"factor"`
	Jitter           float64 `yaml:"jitter"`
	AttemptTimeoutMs int     `yaml:"attempt_timeout_ms"`
}

// CacheConfig selects the embedding cache backend.
type CacheConfig struct {
	Backend string `yaml:"backend"` // memory, store (default: store)
	TTLSec  int    `yaml:"ttl_sec"` // 0 = no expiry
}

// MatchingConfig holds match request settings.
type MatchingConfig struct {
	PoolSize          int `yaml:"pool_size"`
	DefaultDeadlineMs int `yaml:"default_deadline_ms"`
	MaxCandidates     int `yaml:"max_candidates"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	data = expandEnvVars(data)

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML bytes, applies defaults and validates the result.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Postgres.MaxConns <= 0 {
		c.Postgres.MaxConns = 4
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "candidex:"
	}
	if c.Embedding.Vectorizer.Model == "" {
		c.Embedding.Vectorizer.Model = "text-embedding-3-small"
	}

	r := &c.Embedding.Retry
	if r.MaxRetries <= 0 {
		r.MaxRetries = 3
	}
	if r.BaseDelayMs <= 0 {
		r.BaseDelayMs = 200
	}
	if r.Factor <= 0 {
		r.Factor = 2
	}
	if r.Jitter <= 0 {
		r.Jitter = 0.2
	}
	if r.AttemptTimeoutMs <= 0 {
		r.AttemptTimeoutMs = 10000
	}
	if c.Embedding.Cache.Backend == "" {
		c.Embedding.Cache.Backend = "store"
	}

	if c.Matching.PoolSize <= 0 {
		c.Matching.PoolSize = 8
	}
	if c.Matching.DefaultDeadlineMs <= 0 {
		c.Matching.DefaultDeadlineMs = 20000
	}
	if c.Matching.MaxCandidates <= 0 {
		c.Matching.MaxCandidates = 500
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Database.Driver {
	case "valkey", "redis":
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	for name, p := range c.Embedding.Providers {
		switch p.Budget.Action {
		case "", "warn", "reject":
			// ok
		default:
			return fmt.Errorf(
				"embedding.providers.%s.budget.action must be \"warn\" or \"reject\", got %q",
				name, p.Budget.Action,
			)
		}
		if p.RequestsPerSec < 0 {
			return fmt.Errorf("embedding.providers.%s.requests_per_sec must be >= 0", name)
		}
	}
	if prov := c.Embedding.Vectorizer.Provider; prov != "" {
		if _, ok := c.Embedding.Providers[prov]; !ok {
			return fmt.Errorf("embedding.vectorizer.provider %q is not configured", prov)
		}
	}
	if c.Embedding.Retry.Jitter >= 1 {
		return fmt.Errorf("embedding.retry.jitter must be below 1, got %g", c.Embedding.Retry.Jitter)
	}
	switch c.Embedding.Cache.Backend {
	case "memory", "store":
	default:
		return fmt.Errorf("embedding.cache.backend must be \"memory\" or \"store\", got %q", c.Embedding.Cache.Backend)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// Relative to the source file, for tests run from package dirs.
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b)))
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
