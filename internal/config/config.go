package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/verigen/internal/ai"
	"github.com/amishk599/verigen/internal/catalog"
	"github.com/amishk599/verigen/internal/model"
)

// Config is the root configuration for verigen.
type Config struct {
	Store    StoreConfig
	LLM      LLMConfig
	Defaults model.GenerationRequest // preferences a fresh form starts with
	Output   OutputConfig
	Server   ServerConfig
}

// StoreConfig selects where keys, drafts and results are kept.
type StoreConfig struct {
	Driver      string `yaml:"driver"` // "sqlite", "redis" or "memory"
	Path        string `yaml:"path"`   // sqlite database file
	RedisURL    string `yaml:"redis_url"`
	RedisPrefix string `yaml:"redis_prefix"`
}

// LLMConfig controls provider selection and the HTTP behaviour around it.
type LLMConfig struct {
	Provider    string
	Model       string
	CustomModel string
	Timeout     time.Duration // per-generation timeout
	Temperature float64
	MaxTokens   int
	GatewayURL  string            // empty disables the gateway
	Direct      []string          // providers called directly before the gateway
	BaseURLs    map[string]string // overrides for OpenAI-compatible endpoints
	Retry       RetryConfig
	RateLimit   RateLimitConfig
}

// Target returns the configured provider/model pair.
func (l LLMConfig) Target() model.Target {
	return model.Target{Provider: l.Provider, Model: l.Model, CustomModel: l.CustomModel}
}

// ProviderConfig converts the LLM settings into what ai.NewProvider needs.
func (l LLMConfig) ProviderConfig() ai.ProviderConfig {
	return ai.ProviderConfig{
		GatewayURL: l.GatewayURL,
		Direct:     l.Direct,
		BaseURLs:   l.BaseURLs,
		Options:    ai.Options{Temperature: l.Temperature, MaxTokens: l.MaxTokens},
	}
}

// RetryConfig controls retries of transient provider failures.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// RateLimitConfig controls provider-level rate limiting.
type RateLimitConfig struct {
	MinDelay          time.Duration            // minimum gap between requests to the same provider
	ProviderOverrides map[string]time.Duration // per-provider overrides, keyed by provider name
}

// MinDelayFor returns the configured delay for the given provider, falling back to MinDelay.
func (r RateLimitConfig) MinDelayFor(provider string) time.Duration {
	if d, ok := r.ProviderOverrides[provider]; ok {
		return d
	}
	return r.MinDelay
}

// OutputConfig controls where exported files are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// ServerConfig controls the HTTP API started by `verigen serve`.
type ServerConfig struct {
	Addr          string
	Retention     time.Duration // results older than this are pruned; zero keeps everything
	PruneInterval time.Duration
}

const (
	defaultTimeout     = 60 * time.Second
	defaultTemperature = 0.1
	defaultMaxTokens   = 4000
	defaultMaxRetries  = 2
	defaultBaseDelay   = 2 * time.Second
	defaultMinDelay    = 1 * time.Second
	defaultServerAddr  = ":8080"
	defaultPruneEvery  = time.Hour
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Store    StoreConfig       `yaml:"store"`
	LLM      rawLLMConfig      `yaml:"llm"`
	Defaults rawDefaultsConfig `yaml:"defaults"`
	Output   OutputConfig      `yaml:"output"`
	Server   rawServerConfig   `yaml:"server"`
}

type rawServerConfig struct {
	Addr          string `yaml:"addr"`
	Retention     string `yaml:"retention"`
	PruneInterval string `yaml:"prune_interval"`
}

type rawLLMConfig struct {
	Provider    string            `yaml:"provider"`
	Model       string            `yaml:"model"`
	CustomModel string            `yaml:"custom_model"`
	Timeout     string            `yaml:"timeout"`
	Temperature *float64          `yaml:"temperature"`
	MaxTokens   int               `yaml:"max_tokens"`
	GatewayURL  *string           `yaml:"gateway_url"` // nil means default, "" disables
	Direct      []string          `yaml:"direct"`
	BaseURLs    map[string]string `yaml:"base_urls"`
	Retry       rawRetryConfig    `yaml:"retry"`
	RateLimit   rawRateLimit      `yaml:"rate_limit"`
}

type rawRetryConfig struct {
	MaxRetries *int   `yaml:"max_retries"`
	BaseDelay  string `yaml:"base_delay"`
}

type rawRateLimit struct {
	MinDelay          string            `yaml:"min_delay"`
	ProviderOverrides map[string]string `yaml:"provider_overrides"`
}

type rawDefaultsConfig struct {
	CodingStyle            string   `yaml:"coding_style"`
	TestbenchType          string   `yaml:"testbench_type"`
	ModuleFeatures         []string `yaml:"module_features"`
	TestbenchFeatures      []string `yaml:"testbench_features"`
	AdditionalRequirements string   `yaml:"additional_requirements"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Store: StoreConfig{Driver: "sqlite", Path: DefaultStorePath()},
		LLM: LLMConfig{
			Provider:    catalog.ProviderGroq,
			Model:       mustDefaultModel(catalog.ProviderGroq),
			Timeout:     defaultTimeout,
			Temperature: defaultTemperature,
			MaxTokens:   defaultMaxTokens,
			GatewayURL:  ai.DefaultGatewayURL,
			Direct:      []string{catalog.ProviderGroq},
			BaseURLs:    map[string]string{},
			Retry:       RetryConfig{MaxRetries: defaultMaxRetries, BaseDelay: defaultBaseDelay},
			RateLimit:   RateLimitConfig{MinDelay: defaultMinDelay, ProviderOverrides: map[string]time.Duration{}},
		},
		Defaults: catalog.DefaultRequest(),
		Output:   OutputConfig{Dir: "."},
		Server:   ServerConfig{Addr: defaultServerAddr, PruneInterval: defaultPruneEvery},
	}
}

// DefaultStorePath is the sqlite file under the user's config directory, or
// ./verigen.db when that directory cannot be determined.
func DefaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "verigen.db"
	}
	return filepath.Join(dir, "verigen", "verigen.db")
}

func mustDefaultModel(provider string) string {
	p, _ := catalog.LookupProvider(provider)
	return p.DefaultModel()
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse builds a Config from YAML bytes. Unset fields keep their Default values.
func Parse(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()
	var err error

	if raw.Store.Driver != "" {
		cfg.Store.Driver = raw.Store.Driver
	}
	if raw.Store.Path != "" {
		cfg.Store.Path = raw.Store.Path
	}
	cfg.Store.RedisURL = raw.Store.RedisURL
	cfg.Store.RedisPrefix = raw.Store.RedisPrefix

	if raw.LLM.Provider != "" {
		cfg.LLM.Provider = raw.LLM.Provider
		cfg.LLM.Model = ""
		if p, ok := catalog.LookupProvider(raw.LLM.Provider); ok {
			cfg.LLM.Model = p.DefaultModel()
		}
	}
	if raw.LLM.Model != "" {
		cfg.LLM.Model = raw.LLM.Model
	}
	cfg.LLM.CustomModel = raw.LLM.CustomModel

	if raw.LLM.Timeout != "" {
		cfg.LLM.Timeout, err = time.ParseDuration(raw.LLM.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse llm.timeout %q: %w", raw.LLM.Timeout, err)
		}
	}
	if raw.LLM.Temperature != nil {
		cfg.LLM.Temperature = *raw.LLM.Temperature
	}
	if raw.LLM.MaxTokens != 0 {
		cfg.LLM.MaxTokens = raw.LLM.MaxTokens
	}
	if raw.LLM.GatewayURL != nil {
		cfg.LLM.GatewayURL = *raw.LLM.GatewayURL
	}
	if raw.LLM.Direct != nil {
		cfg.LLM.Direct = raw.LLM.Direct
	}
	for name, url := range raw.LLM.BaseURLs {
		cfg.LLM.BaseURLs[name] = url
	}

	if raw.LLM.Retry.MaxRetries != nil {
		cfg.LLM.Retry.MaxRetries = *raw.LLM.Retry.MaxRetries
	}
	if raw.LLM.Retry.BaseDelay != "" {
		cfg.LLM.Retry.BaseDelay, err = time.ParseDuration(raw.LLM.Retry.BaseDelay)
		if err != nil {
			return nil, fmt.Errorf("parse llm.retry.base_delay %q: %w", raw.LLM.Retry.BaseDelay, err)
		}
	}

	if raw.LLM.RateLimit.MinDelay != "" {
		cfg.LLM.RateLimit.MinDelay, err = time.ParseDuration(raw.LLM.RateLimit.MinDelay)
		if err != nil {
			return nil, fmt.Errorf("parse llm.rate_limit.min_delay %q: %w", raw.LLM.RateLimit.MinDelay, err)
		}
	}
	for provider, raw := range raw.LLM.RateLimit.ProviderOverrides {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parse llm.rate_limit.provider_overrides[%q]: %w", provider, err)
		}
		cfg.LLM.RateLimit.ProviderOverrides[provider] = d
	}

	if raw.Defaults.CodingStyle != "" {
		cfg.Defaults.CodingStyle = model.CodingStyle(raw.Defaults.CodingStyle)
	}
	if raw.Defaults.TestbenchType != "" {
		cfg.Defaults.TestbenchType = model.TestbenchType(raw.Defaults.TestbenchType)
	}
	if raw.Defaults.ModuleFeatures != nil {
		cfg.Defaults.ModuleFeatures = raw.Defaults.ModuleFeatures
	}
	if raw.Defaults.TestbenchFeatures != nil {
		cfg.Defaults.TestbenchFeatures = raw.Defaults.TestbenchFeatures
	}
	cfg.Defaults.AdditionalRequirements = raw.Defaults.AdditionalRequirements

	if raw.Output.Dir != "" {
		cfg.Output.Dir = raw.Output.Dir
	}
	if raw.Server.Addr != "" {
		cfg.Server.Addr = raw.Server.Addr
	}
	if raw.Server.Retention != "" {
		cfg.Server.Retention, err = time.ParseDuration(raw.Server.Retention)
		if err != nil {
			return nil, fmt.Errorf("parse server.retention %q: %w", raw.Server.Retention, err)
		}
	}
	if raw.Server.PruneInterval != "" {
		cfg.Server.PruneInterval, err = time.ParseDuration(raw.Server.PruneInterval)
		if err != nil {
			return nil, fmt.Errorf("parse server.prune_interval %q: %w", raw.Server.PruneInterval, err)
		}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Store.Driver {
	case "sqlite":
		if cfg.Store.Path == "" {
			return fmt.Errorf("store.path is required when driver is \"sqlite\"")
		}
	case "redis":
		if cfg.Store.RedisURL == "" {
			return fmt.Errorf("store.redis_url is required when driver is \"redis\"")
		}
	case "memory":
	default:
		return fmt.Errorf("store.driver must be sqlite, redis or memory, got %q", cfg.Store.Driver)
	}

	p, ok := catalog.LookupProvider(cfg.LLM.Provider)
	if !ok {
		return fmt.Errorf("llm.provider %q is not a known provider", cfg.LLM.Provider)
	}
	if !p.HasModel(cfg.LLM.Model) {
		return fmt.Errorf("llm.model %q is not offered by %s (use \"custom\" with llm.custom_model)", cfg.LLM.Model, p.Name)
	}
	if cfg.LLM.Model == model.CustomModelID && cfg.LLM.CustomModel == "" {
		return fmt.Errorf("llm.custom_model is required when llm.model is \"custom\"")
	}
	for _, d := range cfg.LLM.Direct {
		if _, ok := catalog.LookupProvider(d); !ok {
			return fmt.Errorf("llm.direct: unknown provider %q", d)
		}
	}
	if cfg.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive, got %v", cfg.LLM.Timeout)
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %v", cfg.LLM.Temperature)
	}
	if cfg.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", cfg.LLM.MaxTokens)
	}
	if cfg.LLM.Retry.MaxRetries < 0 {
		return fmt.Errorf("llm.retry.max_retries must not be negative, got %d", cfg.LLM.Retry.MaxRetries)
	}
	if cfg.LLM.RateLimit.MinDelay < 0 {
		return fmt.Errorf("llm.rate_limit.min_delay must not be negative, got %v", cfg.LLM.RateLimit.MinDelay)
	}

	if !cfg.Defaults.CodingStyle.Valid() {
		return fmt.Errorf("defaults.coding_style %q is not one of behavioral, structural, mixed", cfg.Defaults.CodingStyle)
	}
	if !cfg.Defaults.TestbenchType.Valid() {
		return fmt.Errorf("defaults.testbench_type %q is not one of basic, comprehensive, self_checking", cfg.Defaults.TestbenchType)
	}
	for _, id := range cfg.Defaults.ModuleFeatures {
		if !catalog.IsModuleFeature(id) {
			return fmt.Errorf("defaults.module_features: unknown feature %q", id)
		}
	}
	for _, id := range cfg.Defaults.TestbenchFeatures {
		if !catalog.IsTestbenchFeature(id) {
			return fmt.Errorf("defaults.testbench_features: unknown feature %q", id)
		}
	}

	if cfg.Server.Retention < 0 {
		return fmt.Errorf("server.retention must not be negative, got %v", cfg.Server.Retention)
	}
	if cfg.Server.Retention > 0 && cfg.Server.PruneInterval <= 0 {
		return fmt.Errorf("server.prune_interval must be positive when retention is set, got %v", cfg.Server.PruneInterval)
	}

	return nil
}
