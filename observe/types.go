package observe

import (
	"context"
	"time"
)

// AttemptRecord describes a single attempt of one execution.
type AttemptRecord struct {
	Attempt   int // 1-based
	StartTime time.Time
	EndTime   time.Time

	Err error

	// Delay is the backoff applied before this attempt (zero for attempt 1).
	Delay time.Duration
}

// Trace is the structured record of a single execution and all of its
// attempts.
type Trace struct {
	// Label identifies the calling site, e.g. "anthropic.messages".
	Label string

	// ExecutionID uniquely identifies this execution.
	ExecutionID string

	Start time.Time
	End   time.Time

	Attempts []AttemptRecord
	FinalErr error
}

// Duration returns the wall-clock span of the execution.
func (t Trace) Duration() time.Duration {
	return t.End.Sub(t.Start)
}

// Observer receives lifecycle callbacks for a single execution.
type Observer interface {
	OnStart(ctx context.Context, label, executionID string)
	OnAttempt(ctx context.Context, label string, rec AttemptRecord)
	OnSuccess(ctx context.Context, label string, tr Trace)
	OnFailure(ctx context.Context, label string, tr Trace)
}
