package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aponysus/backstop/backoff"
	"github.com/aponysus/backstop/classify"
)

func TestDo_Trivial(t *testing.T) {
	exec, _ := newTestExecutor()
	called := false
	err := exec.Do(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Fatalf("unexpected result: err=%v called=%v", err, called)
	}
}

func TestDoValue_NilExecutorUsesDefault(t *testing.T) {
	got, err := DoValue(context.Background(), nil, func(context.Context) (int, error) {
		return 7, nil
	})
	if err != nil || got != 7 {
		t.Fatalf("got=%d err=%v", got, err)
	}
}

func TestDoValue_RetriesThenSucceeds(t *testing.T) {
	exec, _ := newTestExecutor()
	op, calls := failNTimes(2, classify.NewNetworkError("connection refused"), "ok")

	res, err := DoValueWithResult(context.Background(), exec, op, WithMaxAttempts(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value != "ok" {
		t.Fatalf("value=%q, want ok", res.Value)
	}
	if *calls != 3 || res.Attempts != 3 {
		t.Fatalf("calls=%d attempts=%d, want 3", *calls, res.Attempts)
	}
	if len(res.Errors) != 2 {
		t.Fatalf("error history length=%d, want 2", len(res.Errors))
	}
	if res.ExecutionID == "" {
		t.Fatal("expected an execution id")
	}

	stats := exec.Stats()
	if stats.SuccessfulRetries != 1 {
		t.Fatalf("SuccessfulRetries=%d, want 1", stats.SuccessfulRetries)
	}
	if stats.TotalRetryAttempts != 2 {
		t.Fatalf("TotalRetryAttempts=%d, want 2", stats.TotalRetryAttempts)
	}
}

func TestDoValue_NonRetryableStopsAfterOneAttempt(t *testing.T) {
	exec, _ := newTestExecutor()
	calls := 0

	_, err := DoValue(context.Background(), exec, func(context.Context) (string, error) {
		calls++
		return "", classify.NewValidationError("invalid request: missing model")
	}, WithMaxAttempts(10))

	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("calls=%d, want 1 for a validation error", calls)
	}

	var ee *classify.EnhancedError
	if !errors.As(err, &ee) || ee.Category != classify.CategoryValidation {
		t.Fatalf("err=%v, want validation enhanced error", err)
	}
}

func TestDoValue_RawErrorClassifiedByMessage(t *testing.T) {
	exec, _ := newTestExecutor()
	calls := 0

	// Raw network-looking errors are retryable through message classification.
	_, err := DoValue(context.Background(), exec, func(context.Context) (string, error) {
		calls++
		return "", errors.New("connection reset by peer")
	}, WithMaxAttempts(3))

	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	if calls != 3 {
		t.Fatalf("calls=%d, want 3", calls)
	}
}

func TestDoValue_ExhaustionSurfacesLastError(t *testing.T) {
	exec, _ := newTestExecutor()
	attempt := 0

	res, err := DoValueWithResult(context.Background(), exec, func(context.Context) (string, error) {
		attempt++
		if attempt < 3 {
			return "", classify.NewNetworkError("first failure")
		}
		return "", classify.NewNetworkError("final failure")
	}, WithMaxAttempts(3))

	if err == nil || !errors.Is(err, res.Errors[len(res.Errors)-1]) {
		t.Fatalf("final error %v should be the last history entry", err)
	}
	var ee *classify.EnhancedError
	if !errors.As(err, &ee) || ee.Message != "final failure" {
		t.Fatalf("err=%v, want the last attempt's error", err)
	}
	if len(res.Errors) != 3 {
		t.Fatalf("history length=%d, want 3 on a failed execution", len(res.Errors))
	}
}

func TestDoValue_ShouldRetryPredicateIsAuthoritative(t *testing.T) {
	exec, _ := newTestExecutor()
	calls := 0

	// The predicate retries a validation error the default judgment rejects.
	_, err := DoValue(context.Background(), exec, func(context.Context) (string, error) {
		calls++
		return "", classify.NewValidationError("bad input")
	},
		WithMaxAttempts(3),
		WithShouldRetry(func(error, int) bool { return true }),
	)
	if err == nil || calls != 3 {
		t.Fatalf("calls=%d err=%v, want 3 attempts", calls, err)
	}

	// And it refuses a network error the default judgment would retry.
	calls = 0
	_, err = DoValue(context.Background(), exec, func(context.Context) (string, error) {
		calls++
		return "", classify.NewNetworkError("connection refused")
	},
		WithMaxAttempts(3),
		WithShouldRetry(func(error, int) bool { return false }),
	)
	if err == nil || calls != 1 {
		t.Fatalf("calls=%d err=%v, want 1 attempt", calls, err)
	}
}

func TestDoValue_StrategyShouldRetryCheckedBeforeAllowList(t *testing.T) {
	exec, _ := newTestExecutor()
	calls := 0

	_, err := DoValue(context.Background(), exec, func(context.Context) (string, error) {
		calls++
		return "", classify.NewNetworkError("connection refused")
	},
		WithMaxAttempts(5),
		WithStrategy(backoff.Exponential{Config: backoff.Config{MaxRetries: 2}}),
	)
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 2 {
		t.Fatalf("calls=%d, want strategy ceiling of 2", calls)
	}
}

func TestDoValue_RetryableCategoriesAllowList(t *testing.T) {
	exec, _ := newTestExecutor()

	calls := 0
	_, err := DoValue(context.Background(), exec, func(context.Context) (string, error) {
		calls++
		return "", classify.NewParsingError("bad json")
	},
		WithMaxAttempts(3),
		WithRetryableCategories(classify.CategoryParsing),
	)
	if err == nil || calls != 3 {
		t.Fatalf("calls=%d err=%v, want parsing retried via allow-list", calls, err)
	}

	calls = 0
	_, err = DoValue(context.Background(), exec, func(context.Context) (string, error) {
		calls++
		return "", classify.NewNetworkError("connection refused")
	},
		WithMaxAttempts(3),
		WithRetryableCategories(classify.CategoryParsing),
	)
	if err == nil || calls != 1 {
		t.Fatalf("calls=%d err=%v, want network rejected by allow-list", calls, err)
	}
}

func TestDoValue_OnRetryHook(t *testing.T) {
	exec, rec := newTestExecutor()

	type call struct {
		attempt int
		delay   time.Duration
	}
	var hooks []call

	op, _ := failNTimes(2, classify.NewNetworkError("boom"), "ok")
	_, err := DoValue(context.Background(), exec, op,
		WithMaxAttempts(3),
		WithInitialDelay(10*time.Millisecond),
		WithJitter(false),
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			hooks = append(hooks, call{attempt, delay})
		}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hooks) != 2 {
		t.Fatalf("hook calls=%d, want 2", len(hooks))
	}
	if hooks[0].attempt != 1 || hooks[1].attempt != 2 {
		t.Fatalf("hook attempts=%v, want 1 then 2", hooks)
	}
	// Exponential without jitter: 10ms then 20ms, matching the waits.
	if hooks[0].delay != 10*time.Millisecond || hooks[1].delay != 20*time.Millisecond {
		t.Fatalf("hook delays=%v, want 10ms then 20ms", hooks)
	}
	if got := rec.recorded(); len(got) != 2 || got[0] != hooks[0].delay || got[1] != hooks[1].delay {
		t.Fatalf("slept %v, want the hook delays", got)
	}
}

func TestDoValue_PerCallOptionsDoNotStick(t *testing.T) {
	exec, _ := newTestExecutor()

	op, _ := failNTimes(4, classify.NewNetworkError("boom"), "ok")
	if _, err := DoValue(context.Background(), exec, op, WithMaxAttempts(5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := exec.Defaults().MaxAttempts; got != 3 {
		t.Fatalf("defaults mutated by per-call options: MaxAttempts=%d", got)
	}
}
