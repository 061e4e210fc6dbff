package observe

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// PromObserver exports execution metrics to a Prometheus registry.
type PromObserver struct {
	executions      *prometheus.CounterVec
	retries         *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
}

// NewPromObserver registers the backstop metric set with reg and returns an
// observer feeding it.
func NewPromObserver(reg prometheus.Registerer) *PromObserver {
	o := &PromObserver{
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backstop_executions_total",
			Help: "Completed executions by label and outcome.",
		}, []string{"label", "outcome"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backstop_retries_total",
			Help: "Retry attempts issued by label.",
		}, []string{"label"}),
		attemptDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "backstop_attempt_duration_seconds",
			Help:    "Duration of individual attempts.",
			Buckets: prometheus.DefBuckets,
		}, []string{"label"}),
	}
	if reg != nil {
		reg.MustRegister(o.executions, o.retries, o.attemptDuration)
	}
	return o
}

func (o *PromObserver) OnStart(context.Context, string, string) {}

func (o *PromObserver) OnAttempt(_ context.Context, label string, rec AttemptRecord) {
	o.attemptDuration.WithLabelValues(label).Observe(rec.EndTime.Sub(rec.StartTime).Seconds())
	if rec.Attempt > 1 {
		o.retries.WithLabelValues(label).Inc()
	}
}

func (o *PromObserver) OnSuccess(_ context.Context, label string, _ Trace) {
	o.executions.WithLabelValues(label, "success").Inc()
}

func (o *PromObserver) OnFailure(_ context.Context, label string, _ Trace) {
	o.executions.WithLabelValues(label, "failure").Inc()
}
