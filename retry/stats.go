package retry

import "sync"

// Stats is a read-only snapshot of executor statistics.
type Stats struct {
	// TotalExecutions counts completed executions, success or failure.
	TotalExecutions int64

	// FirstAttemptSuccesses counts executions that succeeded on attempt 1.
	FirstAttemptSuccesses int64

	// SuccessfulRetries counts executions that succeeded after at least one
	// retry.
	SuccessfulRetries int64

	// TotalFailures counts executions that exhausted their attempts or hit a
	// terminal condition.
	TotalFailures int64

	// TotalRetryAttempts counts every retry issued across executions.
	TotalRetryAttempts int64

	// AverageAttempts is the running mean attempts per execution.
	AverageAttempts float64

	// MaxAttemptsUsed is the largest attempt count any single execution took.
	MaxAttemptsUsed int
}

// aggregator applies one atomic update per completed execution so a
// concurrent Stats() reader never observes a torn record.
type aggregator struct {
	mu            sync.Mutex
	totalAttempts int64
	s             Stats
}

func (a *aggregator) record(attempts int, success bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.s.TotalExecutions++
	a.totalAttempts += int64(attempts)
	a.s.TotalRetryAttempts += int64(attempts - 1)

	if success {
		if attempts == 1 {
			a.s.FirstAttemptSuccesses++
		} else {
			a.s.SuccessfulRetries++
		}
	} else {
		a.s.TotalFailures++
	}

	a.s.AverageAttempts = float64(a.totalAttempts) / float64(a.s.TotalExecutions)
	if attempts > a.s.MaxAttemptsUsed {
		a.s.MaxAttemptsUsed = attempts
	}
}

func (a *aggregator) snapshot() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.s
}

func (a *aggregator) reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.totalAttempts = 0
	a.s = Stats{}
}
