package backstop

import (
	"context"
	"errors"
	"testing"

	"github.com/aponysus/backstop/retry"
)

func TestDo(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("connection reset by peer")
		}
		return nil
	}, retry.WithInitialDelay(0))
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls=%d, want 2", calls)
	}
}

func TestDoValue(t *testing.T) {
	got, err := DoValue(context.Background(), func(context.Context) (int, error) {
		return 7, nil
	})
	if err != nil || got != 7 {
		t.Fatalf("got=%d err=%v", got, err)
	}
}

func TestDoValueWithResult(t *testing.T) {
	res, err := DoValueWithResult(context.Background(), func(context.Context) (string, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("DoValueWithResult: %v", err)
	}
	if res.Value != "ok" || res.Attempts != 1 {
		t.Fatalf("res=%+v, want one clean attempt", res)
	}
	if res.ExecutionID == "" {
		t.Fatal("expected an execution ID")
	}
}
