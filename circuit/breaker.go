package circuit

import (
	"sync"
	"time"
)

// Breaker is a consecutive-failure circuit breaker. It opens after threshold
// consecutive failed executions, stays open for cooldown, then lets a single
// half-open probe through: a successful probe closes the circuit, a failed
// probe reopens it.
type Breaker struct {
	mu sync.Mutex

	state     State
	threshold int
	cooldown  time.Duration

	consecutiveFailures int
	openedAt            time.Time
	probeInFlight       bool

	nowFn func() time.Time
}

// NewBreaker creates a breaker that opens after threshold consecutive
// failures and stays open for cooldown.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 10 * time.Second
	}
	return &Breaker{
		state:     StateClosed,
		threshold: threshold,
		cooldown:  cooldown,
	}
}

// Allow reports whether an execution may start.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.advanceLocked() {
	case StateOpen:
		return false
	case StateHalfOpen:
		if b.probeInFlight {
			return false
		}
		b.probeInFlight = true
		return true
	default:
		return true
	}
}

// RecordSuccess records a successful execution.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.advanceLocked() {
	case StateClosed:
		b.consecutiveFailures = 0
	case StateHalfOpen:
		b.transitionLocked(StateClosed)
	}
}

// RecordFailure records a failed execution.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.advanceLocked() {
	case StateClosed:
		b.consecutiveFailures++
		if b.consecutiveFailures >= b.threshold {
			b.transitionLocked(StateOpen)
		}
	case StateHalfOpen:
		b.transitionLocked(StateOpen)
	}
}

// State returns the current state, advancing open → half-open when the
// cooldown has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.advanceLocked()
}

func (b *Breaker) advanceLocked() State {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cooldown {
		b.transitionLocked(StateHalfOpen)
	}
	return b.state
}

func (b *Breaker) transitionLocked(next State) {
	b.state = next
	switch next {
	case StateClosed:
		b.consecutiveFailures = 0
		b.probeInFlight = false
	case StateOpen:
		b.openedAt = b.now()
		b.consecutiveFailures = 0
		b.probeInFlight = false
	case StateHalfOpen:
		b.probeInFlight = false
	}
}

func (b *Breaker) now() time.Time {
	if b.nowFn != nil {
		return b.nowFn()
	}
	return time.Now()
}

// SetClock overrides the breaker clock, primarily for tests.
func (b *Breaker) SetClock(f func() time.Time) {
	b.mu.Lock()
	b.nowFn = f
	b.mu.Unlock()
}
