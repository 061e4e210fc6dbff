// Package config loads executor defaults from a YAML file with environment
// overrides (prefix BACKSTOP_, e.g. BACKSTOP_RETRY_MAX_ATTEMPTS).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/aponysus/backstop/budget"
	"github.com/aponysus/backstop/circuit"
	"github.com/aponysus/backstop/retry"
)

const envPrefix = "BACKSTOP"

// RetryConfig mirrors the per-call retry options.
type RetryConfig struct {
	MaxAttempts    int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	InitialDelay   time.Duration `mapstructure:"initial_delay" yaml:"initial_delay"`
	MaxDelay       time.Duration `mapstructure:"max_delay" yaml:"max_delay"`
	Multiplier     float64       `mapstructure:"multiplier" yaml:"multiplier"`
	Jitter         bool          `mapstructure:"jitter" yaml:"jitter"`
	JitterFactor   float64       `mapstructure:"jitter_factor" yaml:"jitter_factor"`
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout" yaml:"attempt_timeout"`
	TotalTimeout   time.Duration `mapstructure:"total_timeout" yaml:"total_timeout"`
}

// CircuitConfig configures an optional circuit breaker.
type CircuitConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	Threshold int           `mapstructure:"threshold" yaml:"threshold"`
	Cooldown  time.Duration `mapstructure:"cooldown" yaml:"cooldown"`
}

// BudgetConfig configures an optional token-bucket retry budget.
type BudgetConfig struct {
	Enabled         bool    `mapstructure:"enabled" yaml:"enabled"`
	Capacity        int     `mapstructure:"capacity" yaml:"capacity"`
	RefillPerSecond float64 `mapstructure:"refill_per_second" yaml:"refill_per_second"`
}

// Config is the full resilience configuration surface.
type Config struct {
	Retry RetryConfig `mapstructure:"retry" yaml:"retry"`

	// Strategy names a registered backoff strategy:
	// exponential, linear or fibonacci.
	Strategy string `mapstructure:"strategy" yaml:"strategy"`

	// Classifier names a registered classification rule set.
	Classifier string `mapstructure:"classifier" yaml:"classifier"`

	Circuit CircuitConfig `mapstructure:"circuit" yaml:"circuit"`
	Budget  BudgetConfig  `mapstructure:"budget" yaml:"budget"`
}

// Default returns a Config matching the stock executor defaults.
func Default() Config {
	d := retry.DefaultOptions()
	return Config{
		Retry: RetryConfig{
			MaxAttempts:  d.MaxAttempts,
			InitialDelay: d.InitialDelay,
			MaxDelay:     d.MaxDelay,
			Multiplier:   d.Multiplier,
			Jitter:       d.Jitter,
			JitterFactor: d.JitterFactor,
		},
		Strategy: d.StrategyName,
	}
}

// Load reads path (YAML) over the defaults and applies BACKSTOP_* env
// overrides. An empty path loads defaults plus environment only.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Default()
	setDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("retry.max_attempts", cfg.Retry.MaxAttempts)
	v.SetDefault("retry.initial_delay", cfg.Retry.InitialDelay)
	v.SetDefault("retry.max_delay", cfg.Retry.MaxDelay)
	v.SetDefault("retry.multiplier", cfg.Retry.Multiplier)
	v.SetDefault("retry.jitter", cfg.Retry.Jitter)
	v.SetDefault("retry.jitter_factor", cfg.Retry.JitterFactor)
	v.SetDefault("retry.attempt_timeout", cfg.Retry.AttemptTimeout)
	v.SetDefault("retry.total_timeout", cfg.Retry.TotalTimeout)
	v.SetDefault("strategy", cfg.Strategy)
	v.SetDefault("classifier", cfg.Classifier)
	v.SetDefault("circuit.enabled", cfg.Circuit.Enabled)
	v.SetDefault("circuit.threshold", cfg.Circuit.Threshold)
	v.SetDefault("circuit.cooldown", cfg.Circuit.Cooldown)
	v.SetDefault("budget.enabled", cfg.Budget.Enabled)
	v.SetDefault("budget.capacity", cfg.Budget.Capacity)
	v.SetDefault("budget.refill_per_second", cfg.Budget.RefillPerSecond)
}

// Options converts the configuration into retry options.
func (c Config) Options() []retry.Option {
	opts := []retry.Option{
		retry.WithMaxAttempts(c.Retry.MaxAttempts),
		retry.WithInitialDelay(c.Retry.InitialDelay),
		retry.WithMaxDelay(c.Retry.MaxDelay),
		retry.WithMultiplier(c.Retry.Multiplier),
		retry.WithJitter(c.Retry.Jitter),
		retry.WithJitterFactor(c.Retry.JitterFactor),
		retry.WithAttemptTimeout(c.Retry.AttemptTimeout),
		retry.WithTotalTimeout(c.Retry.TotalTimeout),
	}
	if c.Strategy != "" {
		opts = append(opts, retry.WithStrategyName(c.Strategy))
	}
	if c.Classifier != "" {
		opts = append(opts, retry.WithClassifier(c.Classifier))
	}
	if c.Circuit.Enabled {
		opts = append(opts, retry.WithBreaker(circuit.NewBreaker(c.Circuit.Threshold, c.Circuit.Cooldown)))
	}
	if c.Budget.Enabled {
		opts = append(opts, retry.WithBudget(budget.NewTokenBucket(c.Budget.Capacity, c.Budget.RefillPerSecond)))
	}
	return opts
}

// Executor builds an executor whose defaults come from the configuration.
func (c Config) Executor(opts ...retry.ExecutorOption) *retry.Executor {
	all := append([]retry.ExecutorOption{retry.WithDefaults(c.Options()...)}, opts...)
	return retry.NewExecutor(all...)
}
