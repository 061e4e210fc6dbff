package retry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aponysus/backstop/backoff"
	"github.com/aponysus/backstop/classify"
	"github.com/aponysus/backstop/observe"
)

var (
	// ErrAttemptTimeout marks an attempt cut off by the per-attempt timeout.
	// Surfaced inside a category-timeout enhanced error; retryable by default.
	ErrAttemptTimeout = errors.New("backstop: attempt timeout exceeded")

	// ErrTotalTimeout marks an execution cut off by the total timeout. It is
	// terminal: no further attempts are issued once it fires.
	ErrTotalTimeout = errors.New("backstop: total timeout exceeded")

	// ErrCircuitOpen is returned without attempting the operation while the
	// configured breaker is open.
	ErrCircuitOpen = errors.New("backstop: circuit open")
)

// Operation is a unit of work under retry. The executor never inspects its
// internals; the context is the cooperative cancellation token and carries
// any per-attempt deadline.
type Operation func(ctx context.Context) error

// OperationValue is an Operation producing a value.
type OperationValue[T any] func(ctx context.Context) (T, error)

// Executor repeatedly invokes operations according to merged retry options,
// consulting the classifier to decide retryability and the backoff strategy
// for delays. Independent executions may run concurrently on one Executor;
// the defaults, registries and statistics are the only shared state.
type Executor struct {
	mu       sync.RWMutex
	defaults Options
	strategy backoff.Strategy // cached, built from defaults

	observer    observe.Observer
	classifiers *classify.Registry
	strategies  *backoff.Registry
	judge       *Judge
	clock       func() time.Time
	sleep       func(context.Context, time.Duration) error

	stats aggregator
}

// ExecutorOption configures an Executor at construction time.
type ExecutorOption func(*Executor)

// WithDefaults merges opts into the executor-wide defaults.
func WithDefaults(opts ...Option) ExecutorOption {
	return func(e *Executor) {
		for _, opt := range opts {
			opt(&e.defaults)
		}
	}
}

// WithObserver sets the observer notified of execution lifecycle events.
func WithObserver(o observe.Observer) ExecutorOption {
	return func(e *Executor) { e.observer = o }
}

// WithClassifierRegistry sets the registry consulted for named rule sets.
func WithClassifierRegistry(r *classify.Registry) ExecutorOption {
	return func(e *Executor) { e.classifiers = r }
}

// WithStrategyRegistry sets the registry consulted for named strategies.
func WithStrategyRegistry(r *backoff.Registry) ExecutorOption {
	return func(e *Executor) { e.strategies = r }
}

// WithJudge replaces the default retryability judgment.
func WithJudge(j *Judge) ExecutorOption {
	return func(e *Executor) { e.judge = j }
}

// WithClock sets the clock function, primarily for tests.
func WithClock(f func() time.Time) ExecutorOption {
	return func(e *Executor) { e.clock = f }
}

// NewExecutor creates an Executor. Unset collaborators get working defaults:
// noop observer, built-in classifier and strategy registries, stock judge.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{defaults: DefaultOptions()}

	for _, opt := range opts {
		opt(e)
	}

	if e.observer == nil {
		e.observer = observe.NoopObserver{}
	}
	if e.classifiers == nil {
		e.classifiers = classify.NewRegistry()
		classify.RegisterBuiltins(e.classifiers)
	}
	if e.strategies == nil {
		e.strategies = backoff.NewRegistry()
		backoff.RegisterBuiltins(e.strategies)
	}
	if e.judge == nil {
		e.judge = NewJudge()
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.sleep == nil {
		e.sleep = sleepWithContext
	}

	e.defaults.normalize()
	e.strategy = e.buildStrategy(e.defaults)

	return e
}

// SetDefaults merges opts into the instance-wide defaults for subsequent
// calls and rebuilds the cached backoff strategy.
func (e *Executor) SetDefaults(opts ...Option) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, opt := range opts {
		opt(&e.defaults)
	}
	e.defaults.normalize()
	e.strategy = e.buildStrategy(e.defaults)
}

// Defaults returns a copy of the current instance-wide defaults.
func (e *Executor) Defaults() Options {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.defaults
}

// Stats returns a snapshot copy of the running statistics.
func (e *Executor) Stats() Stats {
	return e.stats.snapshot()
}

// ResetStats zeroes the running statistics.
func (e *Executor) ResetStats() {
	e.stats.reset()
}

func (e *Executor) buildStrategy(o Options) backoff.Strategy {
	if o.Strategy != nil {
		return o.Strategy
	}
	name := o.StrategyName
	if name == "" {
		name = backoff.StrategyExponential
	}
	return e.strategies.Build(name, o.backoffConfig())
}

// merged returns defaults overlaid with per-call opts, normalized, plus the
// strategy to use. The cached strategy serves calls with no per-call options.
func (e *Executor) merged(opts []Option) (Options, backoff.Strategy) {
	e.mu.RLock()
	o := e.defaults
	cached := e.strategy
	e.mu.RUnlock()

	if len(opts) == 0 {
		return o, cached
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.normalize()
	return o, e.buildStrategy(o)
}

// Do executes op with retries and returns the final error, if any.
func (e *Executor) Do(ctx context.Context, op Operation, opts ...Option) error {
	_, err := DoValue(ctx, e, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	}, opts...)
	return err
}

// DoValue executes op with retries and returns only the success value.
func DoValue[T any](ctx context.Context, exec *Executor, op OperationValue[T], opts ...Option) (T, error) {
	res, err := DoValueWithResult(ctx, exec, op, opts...)
	return res.Value, err
}

// DoValueWithResult executes op with retries and returns the attempts taken,
// the duration and the ordered error history alongside the success value.
func DoValueWithResult[T any](ctx context.Context, exec *Executor, op OperationValue[T], opts ...Option) (Result[T], error) {
	if exec == nil {
		exec = DefaultExecutor()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	o, strategy := exec.merged(opts)

	// Already-cancelled callers fail before any attempt and before statistics
	// are touched.
	if err := ctx.Err(); err != nil {
		return Result[T]{}, err
	}

	if o.Breaker != nil && !o.Breaker.Allow() {
		return Result[T]{}, ErrCircuitOpen
	}

	rules := exec.classifiers.Resolve(o.Classifier)
	execID := uuid.NewString()
	start := exec.clock()

	totalCtx := ctx
	cancelTotal := func() {}
	if o.TotalTimeout > 0 {
		totalCtx, cancelTotal = context.WithTimeout(ctx, o.TotalTimeout)
	}
	defer cancelTotal()

	tr := observe.Trace{Label: o.Label, ExecutionID: execID, Start: start}
	exec.observer.OnStart(ctx, o.Label, execID)

	var history []error
	var lastErr error
	var delay time.Duration

	finish := func(attempts int, value T, finalErr error) (Result[T], error) {
		end := exec.clock()
		tr.End = end
		tr.FinalErr = finalErr
		exec.stats.record(attempts, finalErr == nil)
		if o.Breaker != nil {
			if finalErr == nil {
				o.Breaker.RecordSuccess()
			} else {
				o.Breaker.RecordFailure()
			}
		}
		if finalErr == nil {
			exec.observer.OnSuccess(ctx, o.Label, tr)
		} else {
			exec.observer.OnFailure(ctx, o.Label, tr)
		}
		return Result[T]{
			Value:       value,
			Attempts:    attempts,
			Duration:    end.Sub(start),
			Errors:      history,
			ExecutionID: execID,
		}, finalErr
	}

	var zero T
	for attempt := 1; attempt <= o.MaxAttempts; attempt++ {
		if attempt > 1 && o.Budget != nil {
			if d := o.Budget.AllowRetry(totalCtx, o.Label, attempt); !d.Allowed {
				// Budget denial ends the execution with the last operation
				// error; the denial itself is not an attempt.
				return finish(attempt-1, zero, lastErr)
			}
		}

		attemptCtx := totalCtx
		cancelAttempt := func() {}
		if o.AttemptTimeout > 0 {
			attemptCtx, cancelAttempt = context.WithTimeout(totalCtx, o.AttemptTimeout)
		}

		attemptStart := exec.clock()
		val, err := op(attemptCtx)
		cancelAttempt()
		attemptEnd := exec.clock()

		if err != nil {
			err = markAttemptTimeout(totalCtx, attemptCtx, err)
		}

		rec := observe.AttemptRecord{
			Attempt:   attempt,
			StartTime: attemptStart,
			EndTime:   attemptEnd,
			Err:       err,
			Delay:     delay,
		}
		tr.Attempts = append(tr.Attempts, rec)
		exec.observer.OnAttempt(ctx, o.Label, rec)

		if err == nil {
			return finish(attempt, val, nil)
		}

		history = append(history, err)
		lastErr = err

		// Total timeout and caller cancellation are edge-triggered and
		// terminal: no further attempts once either fires.
		if totalCtx.Err() != nil {
			return finish(attempt, zero, terminalContextError(ctx, totalCtx))
		}

		if attempt == o.MaxAttempts || !exec.admissible(o, strategy, rules, err, attempt) {
			return finish(attempt, zero, lastErr)
		}

		delay = strategy.Delay(attempt, o.InitialDelay)
		if o.OnRetry != nil {
			o.OnRetry(attempt, err, delay)
		}
		if serr := exec.sleep(totalCtx, delay); serr != nil {
			return finish(attempt, zero, terminalContextError(ctx, totalCtx))
		}
	}

	// Unreachable: the loop always returns via finish.
	return finish(o.MaxAttempts, zero, lastErr)
}

// admissible evaluates the retry decision chain in order, short-circuiting on
// the first decisive answer: caller predicate, strategy check, category
// allow-list, default judgment.
func (e *Executor) admissible(o Options, strategy backoff.Strategy, rules *classify.RuleSet, err error, attempt int) bool {
	if o.ShouldRetry != nil {
		return o.ShouldRetry(err, attempt)
	}
	if !strategy.ShouldRetry(err, attempt) {
		return false
	}
	if len(o.RetryableCategories) > 0 {
		cat := categoryOf(err, rules)
		for _, c := range o.RetryableCategories {
			if c == cat {
				return true
			}
		}
		return false
	}
	return e.judge.IsRetryable(err, rules)
}

func categoryOf(err error, rules *classify.RuleSet) classify.Category {
	var ee *classify.EnhancedError
	if errors.As(err, &ee) {
		return ee.Category
	}
	return rules.Classify(err.Error())
}

// markAttemptTimeout wraps a per-attempt deadline hit as a category-timeout
// enhanced error, keeping the original error in the cause chain. A fired
// total timeout takes precedence and is handled by the caller.
func markAttemptTimeout(totalCtx, attemptCtx context.Context, err error) error {
	if totalCtx.Err() != nil {
		return err
	}
	if attemptCtx.Err() != context.DeadlineExceeded {
		return err
	}
	return classify.NewTimeoutError("attempt timeout exceeded").
		WithCause(errors.Join(ErrAttemptTimeout, err))
}

// terminalContextError distinguishes caller cancellation from the executor's
// own total timeout.
func terminalContextError(ctx, totalCtx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if totalCtx.Err() == context.DeadlineExceeded {
		return classify.NewTimeoutError("total timeout exceeded").
			WithCause(errors.Join(ErrTotalTimeout, context.DeadlineExceeded))
	}
	return totalCtx.Err()
}

// sleepWithContext waits for d or until ctx is done, whichever comes first.
// The timer is always stopped and drained so no pending timer leaks.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer func() {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
	}()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
