package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds the runtime options for a policy evaluation. A Config is
// treated as read-only once handed to a resource handler.
type Config struct {
	// Region is the provider region the evaluation is scoped to.
	Region string `yaml:"region,omitempty"`

	// Regions lists additional regions for multi-region evaluations.
	Regions []string `yaml:"regions,omitempty"`

	// AccountID is the provider account the evaluation runs against.
	AccountID string `yaml:"account_id,omitempty"`

	// Cache configures the resource cache capability.
	Cache CacheConfig `yaml:"cache"`

	// Workers is the size of the default execution pool handed to
	// handlers that fan out across regions or accounts.
	Workers int `yaml:"workers" validate:"gte=0,lte=512"`

	// Metrics enables the Prometheus metrics sink.
	Metrics bool `yaml:"metrics,omitempty"`

	// Tracing enables span emission around filter application and
	// provider calls.
	Tracing bool `yaml:"tracing,omitempty"`
}

// CacheConfig configures the cache obtained from cache.Factory.
type CacheConfig struct {
	// Enabled turns resource caching on. When false the factory returns
	// a no-op cache.
	Enabled bool `yaml:"enabled"`

	// Path is the cache database location. ":memory:" or empty selects
	// the in-process cache.
	Path string `yaml:"path,omitempty"`

	// Period is how long cached resource sets stay valid.
	Period time.Duration `yaml:"period,omitempty" validate:"gte=0"`
}

// Default returns the options used when no configuration file is supplied.
func Default() *Config {
	return &Config{
		Workers: 10,
		Cache: CacheConfig{
			Period: 15 * time.Minute,
		},
	}
}

var validate = validator.New()

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Load reads, parses and validates a YAML configuration file. Fields not
// present in the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses and validates YAML configuration bytes.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
