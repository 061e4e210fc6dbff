package retry

import (
	"context"
	"sync"
	"time"
)

// sleepRecorder replaces the executor sleep with an instant no-op that keeps
// the delays it was asked for.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return nil
}

func (r *sleepRecorder) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

// newTestExecutor builds an executor that never really sleeps.
func newTestExecutor(opts ...ExecutorOption) (*Executor, *sleepRecorder) {
	rec := &sleepRecorder{}
	exec := NewExecutor(opts...)
	exec.sleep = rec.sleep
	return exec, rec
}

// failNTimes fails the first n invocations with err, then succeeds with val.
func failNTimes[T any](n int, err error, val T) (OperationValue[T], *int) {
	calls := new(int)
	return func(context.Context) (T, error) {
		*calls++
		var zero T
		if *calls <= n {
			return zero, err
		}
		return val, nil
	}, calls
}
