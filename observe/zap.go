package observe

import (
	"context"

	"go.uber.org/zap"
)

// ZapObserver logs execution lifecycle events with a zap logger.
//
// Attempt failures are logged at warn, terminal failures at error, successes
// at debug so steady-state traffic stays quiet.
type ZapObserver struct {
	Logger *zap.Logger
}

// NewZapObserver wraps logger. A nil logger falls back to zap.NewNop.
func NewZapObserver(logger *zap.Logger) *ZapObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapObserver{Logger: logger}
}

func (z *ZapObserver) log() *zap.Logger {
	if z == nil || z.Logger == nil {
		return zap.NewNop()
	}
	return z.Logger
}

func (z *ZapObserver) OnStart(_ context.Context, label, executionID string) {
	z.log().Debug("execution started",
		zap.String("label", label),
		zap.String("execution_id", executionID),
	)
}

func (z *ZapObserver) OnAttempt(_ context.Context, label string, rec AttemptRecord) {
	if rec.Err == nil {
		return
	}
	z.log().Warn("attempt failed",
		zap.String("label", label),
		zap.Int("attempt", rec.Attempt),
		zap.Duration("delay", rec.Delay),
		zap.Error(rec.Err),
	)
}

func (z *ZapObserver) OnSuccess(_ context.Context, label string, tr Trace) {
	z.log().Debug("execution succeeded",
		zap.String("label", label),
		zap.String("execution_id", tr.ExecutionID),
		zap.Int("attempts", len(tr.Attempts)),
		zap.Duration("duration", tr.Duration()),
	)
}

func (z *ZapObserver) OnFailure(_ context.Context, label string, tr Trace) {
	z.log().Error("execution failed",
		zap.String("label", label),
		zap.String("execution_id", tr.ExecutionID),
		zap.Int("attempts", len(tr.Attempts)),
		zap.Duration("duration", tr.Duration()),
		zap.Error(tr.FinalErr),
	)
}
