package budget

import "context"

// Standard Decision.Reason strings.
const (
	ReasonAllowed      = "allowed"
	ReasonBudgetDenied = "budget_denied"
	ReasonBudgetNil    = "budget_nil"
)

// Decision is the result of a budget check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Budget gates retry attempts to prevent retry storms. Label identifies the
// calling site (the executor passes the execution label), attempt is the
// 1-based attempt about to be issued.
type Budget interface {
	AllowRetry(ctx context.Context, label string, attempt int) Decision
}
