package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/aponysus/backstop"

// OtelObserver records one span per execution with an event per attempt.
//
// Spans are keyed by execution ID because the executor calls the observer
// with the caller's context, which may be shared across concurrent
// executions.
type OtelObserver struct {
	Tracer trace.Tracer

	mu    sync.Mutex
	spans map[string]trace.Span
}

// NewOtelObserver builds an observer from the given tracer. A nil tracer
// falls back to the global provider.
func NewOtelObserver(tracer trace.Tracer) *OtelObserver {
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &OtelObserver{
		Tracer: tracer,
		spans:  make(map[string]trace.Span),
	}
}

func (o *OtelObserver) OnStart(ctx context.Context, label, executionID string) {
	_, span := o.Tracer.Start(ctx, "backstop.execute",
		trace.WithAttributes(
			attribute.String("backstop.label", label),
			attribute.String("backstop.execution_id", executionID),
		))
	o.mu.Lock()
	o.spans[executionID] = span
	o.mu.Unlock()
}

func (o *OtelObserver) OnAttempt(_ context.Context, _ string, rec AttemptRecord) {
	// Attempt events are attached on completion, when the span is looked up.
}

func (o *OtelObserver) OnSuccess(_ context.Context, _ string, tr Trace) {
	span := o.take(tr.ExecutionID)
	if span == nil {
		return
	}
	o.annotate(span, tr)
	span.SetStatus(codes.Ok, "")
	span.End()
}

func (o *OtelObserver) OnFailure(_ context.Context, _ string, tr Trace) {
	span := o.take(tr.ExecutionID)
	if span == nil {
		return
	}
	o.annotate(span, tr)
	if tr.FinalErr != nil {
		span.RecordError(tr.FinalErr)
		span.SetStatus(codes.Error, tr.FinalErr.Error())
	}
	span.End()
}

func (o *OtelObserver) annotate(span trace.Span, tr Trace) {
	span.SetAttributes(attribute.Int("backstop.attempts", len(tr.Attempts)))
	for _, rec := range tr.Attempts {
		attrs := []attribute.KeyValue{
			attribute.Int("attempt", rec.Attempt),
			attribute.String("duration", rec.EndTime.Sub(rec.StartTime).String()),
		}
		if rec.Err != nil {
			attrs = append(attrs, attribute.String("error", rec.Err.Error()))
		}
		span.AddEvent("attempt", trace.WithAttributes(attrs...))
	}
}

func (o *OtelObserver) take(executionID string) trace.Span {
	o.mu.Lock()
	defer o.mu.Unlock()
	span, ok := o.spans[executionID]
	if !ok {
		return nil
	}
	delete(o.spans, executionID)
	return span
}
