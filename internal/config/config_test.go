package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidBudgetAction(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Providers = map[string]ProviderConfig{
		"openai": {
			APIKey: "test-key",
			Budget: BudgetConfig{
				DailyTokenLimit: 1000000,
				Action:          "invalid_action",
			},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid budget action")
	}

	expected := `embedding.providers.openai.budget.action must be "warn" or "reject", got "invalid_action"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidBudgetActions(t *testing.T) {
	for _, action := range []string{"", "warn", "reject"} {
		t.Run("action="+action, func(t *testing.T) {
			cfg := validConfig()
			cfg.Embedding.Providers = map[string]ProviderConfig{
				"openai": {APIKey: "test-key", Budget: BudgetConfig{Action: action}},
			}
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for valid action %q: %v", action, err)
			}
		})
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "memcached"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestValidate_VectorizerProviderMissing(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Vectorizer.Provider = "openai"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Fatalf("expected unconfigured provider error, got %v", err)
	}
}

func TestValidate_CacheBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Cache.Backend = "disk"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown cache backend")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Database.Driver != "valkey" {
		t.Errorf("expected driver valkey, got %q", cfg.Database.Driver)
	}
	if cfg.Embedding.Retry.MaxRetries != 3 {
		t.Errorf("expected MaxRetries=3, got %d", cfg.Embedding.Retry.MaxRetries)
	}
	if cfg.Embedding.Retry.BaseDelayMs != 200 {
		t.Errorf("expected BaseDelayMs=200, got %d", cfg.Embedding.Retry.BaseDelayMs)
	}
	if cfg.Embedding.Retry.Factor != 2 {
		t.Errorf("expected Factor=2, got %g", cfg.Embedding.Retry.Factor)
	}
	if cfg.Embedding.Retry.Jitter != 0.2 {
		t.Errorf("expected Jitter=0.2, got %g", cfg.Embedding.Retry.Jitter)
	}
	if cfg.Matching.PoolSize != 8 {
		t.Errorf("expected PoolSize=8, got %d", cfg.Matching.PoolSize)
	}
	if cfg.Embedding.Cache.Backend != "store" {
		t.Errorf("expected cache backend store, got %q", cfg.Embedding.Cache.Backend)
	}
	if cfg.Storage.KeyPrefix != "candidex:" {
		t.Errorf("expected KeyPrefix='candidex:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Matching: MatchingConfig{PoolSize: 2},
		Storage:  StorageConfig{KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Matching.PoolSize != 2 {
		t.Errorf("expected PoolSize=2, got %d", cfg.Matching.PoolSize)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("CANDIDEX_TEST_KEY", "sk-123")

	raw := []byte(`
http:
  port: 8080
database:
  addrs: ["localhost:6379"]
embedding:
  providers:
    openai:
      api_key: ${CANDIDEX_TEST_KEY}
      base_url: ${CANDIDEX_TEST_URL:-https://api.openai.com/v1}
  vectorizer:
    provider: openai
`)
	cfg, err := Parse(expandEnvVars(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := cfg.Embedding.Providers["openai"]
	if p.APIKey != "sk-123" {
		t.Errorf("expected api key from env, got %q", p.APIKey)
	}
	if p.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("expected default base url, got %q", p.BaseURL)
	}
}
