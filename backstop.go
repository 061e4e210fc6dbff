package backstop

import (
	"context"

	"github.com/aponysus/backstop/retry"
)

// Init sets the shared default executor.
// It must be called before Do/DoValue are used.
func Init(exec *retry.Executor) {
	retry.SetGlobal(exec)
}

// Do executes op using the default executor.
func Do(ctx context.Context, op retry.Operation, opts ...retry.Option) error {
	return retry.DefaultExecutor().Do(ctx, op, opts...)
}

// DoValue executes op using the default executor.
func DoValue[T any](ctx context.Context, op retry.OperationValue[T], opts ...retry.Option) (T, error) {
	return retry.DoValue(ctx, retry.DefaultExecutor(), op, opts...)
}

// DoValueWithResult executes op using the default executor and returns the
// attempts taken, duration and error history alongside the value.
func DoValueWithResult[T any](ctx context.Context, op retry.OperationValue[T], opts ...retry.Option) (retry.Result[T], error) {
	return retry.DoValueWithResult(ctx, retry.DefaultExecutor(), op, opts...)
}
