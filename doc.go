// Package backstop is a client-side resilience layer for remote LLM API and
// CLI integrations. It classifies raw failures into a closed error taxonomy
// with actionable resolutions and automatically retries recoverable
// operations with configurable backoff, per-attempt and total timeouts,
// cooperative cancellation and execution statistics.
//
// Most callers use the package-level helpers backed by a shared executor:
//
//	val, err := backstop.DoValue(ctx, func(ctx context.Context) (string, error) {
//		return client.Complete(ctx, prompt)
//	}, retry.WithLabel("anthropic.messages"), retry.WithMaxAttempts(5))
//
// Construct a retry.Executor directly for isolated defaults, statistics and
// observers.
package backstop
