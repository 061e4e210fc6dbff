package budget

import (
	"context"
	"math"
	"sync"
	"time"
)

// Unlimited allows every retry.
type Unlimited struct{}

func (Unlimited) AllowRetry(context.Context, string, int) Decision {
	return Decision{Allowed: true, Reason: ReasonAllowed}
}

// TokenBucket is a token-bucket retry budget shared across executions.
//
// It starts full (capacity tokens) and refills at refillPerSecond
// tokens/second. Each allowed retry consumes one token.
type TokenBucket struct {
	mu sync.Mutex

	capacity        float64
	refillPerSecond float64

	tokens float64
	last   time.Time
}

func NewTokenBucket(capacity int, refillPerSecond float64) *TokenBucket {
	if capacity < 0 {
		capacity = 0
	}
	if refillPerSecond < 0 || math.IsNaN(refillPerSecond) || math.IsInf(refillPerSecond, 0) {
		refillPerSecond = 0
	}
	return &TokenBucket{
		capacity:        float64(capacity),
		refillPerSecond: refillPerSecond,
		tokens:          float64(capacity),
		last:            time.Now(),
	}
}

func (b *TokenBucket) AllowRetry(_ context.Context, _ string, _ int) Decision {
	if b == nil {
		return Decision{Allowed: false, Reason: ReasonBudgetNil}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if b.refillPerSecond > 0 && now.After(b.last) {
		b.tokens += now.Sub(b.last).Seconds() * b.refillPerSecond
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
	}
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return Decision{Allowed: true, Reason: ReasonAllowed}
	}
	return Decision{Allowed: false, Reason: ReasonBudgetDenied}
}
