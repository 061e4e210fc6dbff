package backoff

import (
	"math/rand"
	"time"
)

// Strategy computes the delay to apply before the next retry attempt.
//
// Delay is called with the attempt that just failed (1-based), so attempt 1
// yields the base delay: the strategy shapes the wait before attempt 2, never
// before the first attempt.
type Strategy interface {
	// Delay returns the wait before the attempt following attempt. The result
	// is always in [0, MaxDelay].
	Delay(attempt int, base time.Duration) time.Duration

	// ShouldRetry is a coarse admissibility check independent of error
	// classification, e.g. an attempt ceiling baked into the strategy.
	ShouldRetry(err error, attempt int) bool
}

// Config carries the tunables shared by the built-in strategies. A zero value
// is usable: no cap, no jitter, no attempt ceiling.
type Config struct {
	// Multiplier is the exponential growth factor (Exponential only).
	Multiplier float64

	// Increment is the per-attempt additive step (Linear only).
	Increment time.Duration

	// MaxDelay caps every computed delay. Zero means uncapped.
	MaxDelay time.Duration

	// Jitter enables randomized spread around the computed delay.
	Jitter bool

	// JitterFactor is the fraction of the computed delay used as spread:
	// the jittered delay is uniform in [d-f*d, d+f*d].
	JitterFactor float64

	// MaxRetries, when positive, makes ShouldRetry reject attempts past it.
	MaxRetries int
}

func (c Config) shouldRetry(attempt int) bool {
	return c.MaxRetries <= 0 || attempt < c.MaxRetries
}

// shape applies jitter and the cap to a raw delay. Jitter never produces a
// negative delay.
func (c Config) shape(d time.Duration) time.Duration {
	d = capDelay(d, c.MaxDelay)
	if c.Jitter && c.JitterFactor > 0 && d > 0 {
		spread := c.JitterFactor * float64(d)
		d += time.Duration((rand.Float64()*2 - 1) * spread)
	}
	return capDelay(d, c.MaxDelay)
}

func capDelay(d, max time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if max > 0 && d > max {
		return max
	}
	return d
}
