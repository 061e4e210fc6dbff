package circuit

// State represents the state of a circuit breaker.
type State int

const (
	StateClosed   State = iota // Normal operation, executions allowed.
	StateOpen                  // Circuit open, executions fast-failed.
	StateHalfOpen              // Probing mode, a single execution allowed.
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}
