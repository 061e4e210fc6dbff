package observe

import (
	"context"
	"errors"
	"testing"
	"time"
)

type countingObserver struct {
	starts, attempts, successes, failures int
}

func (c *countingObserver) OnStart(context.Context, string, string)          { c.starts++ }
func (c *countingObserver) OnAttempt(context.Context, string, AttemptRecord) { c.attempts++ }
func (c *countingObserver) OnSuccess(context.Context, string, Trace)         { c.successes++ }
func (c *countingObserver) OnFailure(context.Context, string, Trace)         { c.failures++ }

func TestMultiObserver_FansOut(t *testing.T) {
	a := &countingObserver{}
	b := &countingObserver{}
	m := MultiObserver{Observers: []Observer{a, nil, b}}

	ctx := context.Background()
	m.OnStart(ctx, "x", "id")
	m.OnAttempt(ctx, "x", AttemptRecord{Attempt: 1})
	m.OnSuccess(ctx, "x", Trace{})
	m.OnFailure(ctx, "x", Trace{})

	for _, o := range []*countingObserver{a, b} {
		if o.starts != 1 || o.attempts != 1 || o.successes != 1 || o.failures != 1 {
			t.Fatalf("observer not fed all events: %+v", o)
		}
	}
}

func TestBaseObserver_Embeddable(t *testing.T) {
	type partial struct {
		BaseObserver
		failures int
	}
	// Compile-time check that embedding satisfies the interface.
	var _ Observer = &partial{}
}

func TestTrace_Duration(t *testing.T) {
	start := time.Now()
	tr := Trace{Start: start, End: start.Add(3 * time.Second)}
	if tr.Duration() != 3*time.Second {
		t.Fatalf("Duration=%v, want 3s", tr.Duration())
	}
}

func TestNoopObserver_DoesNothing(t *testing.T) {
	var o NoopObserver
	ctx := context.Background()
	o.OnStart(ctx, "x", "id")
	o.OnAttempt(ctx, "x", AttemptRecord{Err: errors.New("boom")})
	o.OnSuccess(ctx, "x", Trace{})
	o.OnFailure(ctx, "x", Trace{FinalErr: errors.New("boom")})
}
