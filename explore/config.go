package explore

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds the immutable loop tunables. It is loaded once and passed by
// value to every component; components never write it back.
type Config struct {
	MaxIterations        int           `yaml:"max_iterations" env:"CODEFUSION_MAX_ITERATIONS"`
	IterationTimeout     time.Duration `yaml:"iteration_timeout" env:"CODEFUSION_ITERATION_TIMEOUT"`
	TotalTimeout         time.Duration `yaml:"total_timeout" env:"CODEFUSION_TOTAL_TIMEOUT"`
	MaxConsecutiveErrors int           `yaml:"max_consecutive_errors" env:"CODEFUSION_MAX_CONSECUTIVE_ERRORS"`
	MaxErrors            int           `yaml:"max_errors" env:"CODEFUSION_MAX_ERRORS"`
	MaxSameActionRepeats int           `yaml:"max_same_action_repeats" env:"CODEFUSION_MAX_SAME_ACTION_REPEATS"`

	ToolTimeout    time.Duration `yaml:"tool_timeout" env:"CODEFUSION_TOOL_TIMEOUT"`
	MaxToolRetries int           `yaml:"max_tool_retries" env:"CODEFUSION_MAX_TOOL_RETRIES"`
	// RetryBaseDelay is the backoff seed between tool retries; kept short so
	// a failing tool does not eat the iteration budget.
	RetryBaseDelay time.Duration `yaml:"retry_base_delay" env:"CODEFUSION_RETRY_BASE_DELAY"`

	CacheSize int           `yaml:"cache_size" env:"CODEFUSION_CACHE_SIZE"`
	CacheTTL  time.Duration `yaml:"cache_ttl" env:"CODEFUSION_CACHE_TTL"`
	CacheDir  string        `yaml:"cache_dir" env:"CODEFUSION_CACHE_DIR"`

	TracingEnabled bool   `yaml:"tracing_enabled" env:"CODEFUSION_TRACING_ENABLED"`
	TraceDir       string `yaml:"trace_dir" env:"CODEFUSION_TRACE_DIR"`
}

// DefaultConfig returns the default tunables.
func DefaultConfig() Config {
	return Config{
		MaxIterations:        10,
		IterationTimeout:     60 * time.Second,
		TotalTimeout:         10 * time.Minute,
		MaxConsecutiveErrors: 3,
		MaxErrors:            10,
		MaxSameActionRepeats: 4,
		ToolTimeout:          30 * time.Second,
		MaxToolRetries:       2,
		RetryBaseDelay:       100 * time.Millisecond,
		CacheSize:            100,
		CacheTTL:             5 * time.Minute,
		TracingEnabled:       true,
	}
}

// LoadConfig builds a Config from defaults, an optional YAML file, and
// CODEFUSION_* environment overrides, in that order.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("config: environment overrides: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.MaxIterations <= 0 {
		return fmt.Errorf("config: max_iterations must be positive, got %d", c.MaxIterations)
	}
	if c.MaxConsecutiveErrors <= 0 {
		return fmt.Errorf("config: max_consecutive_errors must be positive, got %d", c.MaxConsecutiveErrors)
	}
	if c.ToolTimeout <= 0 {
		return fmt.Errorf("config: tool_timeout must be positive, got %v", c.ToolTimeout)
	}
	if c.MaxToolRetries < 0 {
		return fmt.Errorf("config: max_tool_retries must not be negative, got %d", c.MaxToolRetries)
	}
	return nil
}
