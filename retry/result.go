package retry

import "time"

// Result carries the outcome of a successful execution alongside its
// diagnostics.
type Result[T any] struct {
	Value T

	// Attempts is the total attempts taken, including the successful one.
	Attempts int

	// Duration is the wall-clock time of the whole execution.
	Duration time.Duration

	// Errors holds the errors of failed attempts, in attempt order. Empty on
	// first-attempt success. On a failed execution it includes the final
	// attempt's error.
	Errors []error

	// ExecutionID identifies this execution in observer traces.
	ExecutionID string
}
