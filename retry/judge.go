package retry

import (
	"context"
	"errors"

	"github.com/aponysus/backstop/classify"
)

// Judge is the default retryability fallback, consulted when no per-call
// predicate or allow-list decides. The stock judgment: rate-limit-like,
// network-like and server-side failures are retryable; validation, auth and
// malformed-input failures are not.
//
// All boundaries are configurable: replace the judge wholesale with WithJudge
// to move the server-error floor or the retryable sets.
type Judge struct {
	// Retryable marks categories retryable by default.
	Retryable map[classify.Category]bool

	// RetryableStatuses marks individual status codes retryable regardless
	// of category (e.g. 408, 429).
	RetryableStatuses map[int]bool

	// ServerErrorFloor treats any status >= this value as retryable.
	// Zero disables status-based server-error judgment.
	ServerErrorFloor int
}

// NewJudge returns the stock judgment.
func NewJudge() *Judge {
	return &Judge{
		Retryable: map[classify.Category]bool{
			classify.CategoryNetwork: true,
			classify.CategoryTimeout: true,
		},
		RetryableStatuses: map[int]bool{
			408: true,
			429: true,
		},
		ServerErrorFloor: 500,
	}
}

// IsRetryable judges err, classifying raw errors through rules.
func (j *Judge) IsRetryable(err error, rules *classify.RuleSet) bool {
	if err == nil {
		return false
	}

	// Total timeout is always terminal, even though its message matches the
	// timeout patterns.
	if errors.Is(err, ErrTotalTimeout) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var ee *classify.EnhancedError
	if errors.As(err, &ee) {
		if ee.StatusCode != 0 {
			if j.RetryableStatuses[ee.StatusCode] {
				return true
			}
			if j.ServerErrorFloor > 0 {
				if ee.StatusCode >= j.ServerErrorFloor {
					return true
				}
				if ee.StatusCode >= 400 {
					// A decisive client error wins over the category.
					return false
				}
			}
		}
		return j.Retryable[ee.Category]
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	return j.Retryable[rules.Classify(err.Error())]
}
