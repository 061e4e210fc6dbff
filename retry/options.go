package retry

import (
	"time"

	"github.com/aponysus/backstop/backoff"
	"github.com/aponysus/backstop/budget"
	"github.com/aponysus/backstop/circuit"
	"github.com/aponysus/backstop/classify"
)

// Options configures a single execution. Per-call options are merged over the
// executor's defaults and never retained beyond the call.
type Options struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
	JitterFactor float64

	// AttemptTimeout caps a single attempt. Zero means uncapped.
	AttemptTimeout time.Duration

	// TotalTimeout caps wall-clock time across all attempts. Once it fires
	// the execution is over, regardless of remaining attempts.
	TotalTimeout time.Duration

	// ShouldRetry, when set, is the authoritative retry predicate. It
	// overrides the strategy check, the allow-list and the default judgment.
	ShouldRetry func(err error, attempt int) bool

	// RetryableCategories, when non-empty, restricts retries to errors
	// classifying into one of the listed categories.
	RetryableCategories []classify.Category

	// OnRetry is invoked before each inter-retry wait.
	OnRetry func(attempt int, err error, delay time.Duration)

	// Strategy, when set, is used as-is. Otherwise StrategyName is resolved
	// against the executor's strategy registry and built from the delay
	// fields above.
	Strategy     backoff.Strategy
	StrategyName string

	// Classifier names a rule set in the executor's classifier registry.
	// Empty or unknown names fall back to the default rules.
	Classifier string

	// Label identifies the calling site in observers and metrics.
	Label string

	Budget  budget.Budget
	Breaker *circuit.Breaker
}

// DefaultOptions returns the stock configuration: 3 attempts, 1s initial
// delay, 30s cap, multiplier 2, 10% jitter.
func DefaultOptions() Options {
	return Options{
		MaxAttempts:  3,
		InitialDelay: 1000 * time.Millisecond,
		MaxDelay:     30000 * time.Millisecond,
		Multiplier:   2,
		Jitter:       true,
		JitterFactor: 0.1,
		StrategyName: backoff.StrategyExponential,
	}
}

const (
	maxAttemptsCeiling   = 100
	maxMultiplierCeiling = 10
)

// normalize clamps out-of-range values in place.
func (o *Options) normalize() {
	if o.MaxAttempts < 1 {
		o.MaxAttempts = 1
	} else if o.MaxAttempts > maxAttemptsCeiling {
		o.MaxAttempts = maxAttemptsCeiling
	}

	if o.InitialDelay < 0 {
		o.InitialDelay = 0
	}
	if o.MaxDelay < 0 {
		o.MaxDelay = 0
	}
	if o.MaxDelay > 0 && o.MaxDelay < o.InitialDelay {
		o.MaxDelay = o.InitialDelay
	}

	if o.Multiplier < 1 {
		o.Multiplier = 1
	} else if o.Multiplier > maxMultiplierCeiling {
		o.Multiplier = maxMultiplierCeiling
	}

	if o.JitterFactor < 0 {
		o.JitterFactor = 0
	} else if o.JitterFactor > 1 {
		o.JitterFactor = 1
	}

	if o.AttemptTimeout < 0 {
		o.AttemptTimeout = 0
	}
	if o.TotalTimeout < 0 {
		o.TotalTimeout = 0
	}
}

// backoffConfig maps the delay-shaping fields onto a strategy config.
func (o Options) backoffConfig() backoff.Config {
	return backoff.Config{
		Multiplier:   o.Multiplier,
		MaxDelay:     o.MaxDelay,
		Jitter:       o.Jitter,
		JitterFactor: o.JitterFactor,
	}
}

// Option mutates per-call Options.
type Option func(*Options)

// WithMaxAttempts sets the attempt ceiling, including the first attempt.
func WithMaxAttempts(n int) Option {
	return func(o *Options) { o.MaxAttempts = n }
}

// WithInitialDelay sets the base delay fed to the backoff strategy.
func WithInitialDelay(d time.Duration) Option {
	return func(o *Options) { o.InitialDelay = d }
}

// WithMaxDelay caps every computed delay.
func WithMaxDelay(d time.Duration) Option {
	return func(o *Options) { o.MaxDelay = d }
}

// WithMultiplier sets the exponential growth factor.
func WithMultiplier(m float64) Option {
	return func(o *Options) { o.Multiplier = m }
}

// WithJitter toggles randomized delay spread.
func WithJitter(enabled bool) Option {
	return func(o *Options) { o.Jitter = enabled }
}

// WithJitterFactor sets the spread fraction in [0, 1].
func WithJitterFactor(f float64) Option {
	return func(o *Options) { o.JitterFactor = f }
}

// WithAttemptTimeout caps each individual attempt.
func WithAttemptTimeout(d time.Duration) Option {
	return func(o *Options) { o.AttemptTimeout = d }
}

// WithTotalTimeout caps the whole execution.
func WithTotalTimeout(d time.Duration) Option {
	return func(o *Options) { o.TotalTimeout = d }
}

// WithShouldRetry installs an authoritative retry predicate.
func WithShouldRetry(f func(err error, attempt int) bool) Option {
	return func(o *Options) { o.ShouldRetry = f }
}

// WithRetryableCategories restricts retries to the listed categories.
func WithRetryableCategories(cats ...classify.Category) Option {
	return func(o *Options) { o.RetryableCategories = cats }
}

// WithOnRetry installs a hook invoked before each inter-retry wait.
func WithOnRetry(f func(attempt int, err error, delay time.Duration)) Option {
	return func(o *Options) { o.OnRetry = f }
}

// WithStrategy sets an explicit backoff strategy, bypassing the registry.
func WithStrategy(s backoff.Strategy) Option {
	return func(o *Options) { o.Strategy = s }
}

// WithStrategyName selects a registered strategy by name.
func WithStrategyName(name string) Option {
	return func(o *Options) { o.StrategyName = name }
}

// WithClassifier selects a registered classification rule set by name.
func WithClassifier(name string) Option {
	return func(o *Options) { o.Classifier = name }
}

// WithLabel tags the execution for observers and metrics.
func WithLabel(label string) Option {
	return func(o *Options) { o.Label = label }
}

// WithBudget gates retries through a shared budget.
func WithBudget(b budget.Budget) Option {
	return func(o *Options) { o.Budget = b }
}

// WithBreaker fast-fails executions while the breaker is open.
func WithBreaker(b *circuit.Breaker) Option {
	return func(o *Options) { o.Breaker = b }
}
