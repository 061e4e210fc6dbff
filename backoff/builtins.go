package backoff

import (
	"math"
	"time"
)

// Built-in strategy registry names.
const (
	StrategyExponential = "exponential"
	StrategyLinear      = "linear"
	StrategyFibonacci   = "fibonacci"
)

// RegisterBuiltins registers the built-in strategy factories into reg.
func RegisterBuiltins(reg *Registry) {
	if reg == nil {
		return
	}
	reg.Register(StrategyExponential, func(cfg Config) Strategy { return Exponential{Config: cfg} })
	reg.Register(StrategyLinear, func(cfg Config) Strategy { return Linear{Config: cfg} })
	reg.Register(StrategyFibonacci, func(cfg Config) Strategy { return Fibonacci{Config: cfg} })
}

// Exponential grows the delay geometrically:
// delay(n) = base * Multiplier^(n-1), capped at MaxDelay.
type Exponential struct {
	Config
}

func (s Exponential) Delay(attempt int, base time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	mult := s.Multiplier
	if mult <= 0 {
		mult = 2
	}
	d := float64(base)
	for i := 1; i < attempt; i++ {
		d *= mult
		// Stop growing once past the cap so huge attempt numbers don't overflow.
		if s.MaxDelay > 0 && d > float64(s.MaxDelay) {
			d = float64(s.MaxDelay)
			break
		}
	}
	return s.shape(time.Duration(d))
}

func (s Exponential) ShouldRetry(_ error, attempt int) bool {
	return s.shouldRetry(attempt)
}

// Linear grows the delay additively:
// delay(n) = base + Increment*(n-1), capped at MaxDelay.
type Linear struct {
	Config
}

func (s Linear) Delay(attempt int, base time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	inc := s.Increment
	if inc <= 0 {
		inc = base
	}
	return s.shape(base + inc*time.Duration(attempt-1))
}

func (s Linear) ShouldRetry(_ error, attempt int) bool {
	return s.shouldRetry(attempt)
}

// Fibonacci scales the delay by the Fibonacci sequence:
// delay(n) = base * fib(n) with fib(1)=fib(2)=1, capped at MaxDelay.
type Fibonacci struct {
	Config
}

func (s Fibonacci) Delay(attempt int, base time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	limit := int64(math.MaxInt64)
	if base > 0 {
		limit = math.MaxInt64 / int64(base)
	}
	if s.MaxDelay > 0 && base > 0 {
		// Stop growing once past the cap so huge attempt numbers don't overflow.
		limit = int64(s.MaxDelay)/int64(base) + 1
	}

	prev, cur := int64(0), int64(1)
	for i := 1; i < attempt; i++ {
		prev, cur = cur, prev+cur
		if cur >= limit || cur < prev {
			cur = limit
			break
		}
	}
	return s.shape(base * time.Duration(cur))
}

func (s Fibonacci) ShouldRetry(_ error, attempt int) bool {
	return s.shouldRetry(attempt)
}
