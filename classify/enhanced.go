package classify

import (
	"fmt"
	"strconv"
)

// EnhancedError is a tagged error value combining an original failure with a
// classified category and actionable resolution text.
//
// Category and Resolution are always present; everything else is optional.
// Values are immutable after construction apart from backfilling Cause when
// wrapping a pre-existing error.
type EnhancedError struct {
	Category   Category
	Message    string
	Resolution string

	// StatusCode is the HTTP-equivalent status, when known. Zero means unset.
	StatusCode int

	// Context holds free-form diagnostic key/values.
	Context map[string]any

	// Cause is the original error, preserved for diagnostics.
	Cause error
}

func (e *EnhancedError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("[%s] %s", e.Category, e.Message)
}

func (e *EnhancedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// WithCause returns a copy of e carrying cause.
func (e *EnhancedError) WithCause(cause error) *EnhancedError {
	if e == nil {
		return nil
	}
	out := *e
	out.Cause = cause
	return &out
}

// WithStatusCode returns a copy of e carrying code.
func (e *EnhancedError) WithStatusCode(code int) *EnhancedError {
	if e == nil {
		return nil
	}
	out := *e
	out.StatusCode = code
	return &out
}

// New builds an enhanced error of the given category with its default
// resolution. Invalid categories degrade to unknown.
func New(category Category, message string, context map[string]any) *EnhancedError {
	if !category.Valid() {
		category = CategoryUnknown
	}
	e := &EnhancedError{
		Category:   category,
		Message:    message,
		Resolution: DefaultResolution(category),
		Context:    context,
	}
	if category == CategorySubprocess {
		e.Resolution = subprocessResolution(context)
	}
	return e
}

func NewAuthError(message string) *EnhancedError {
	return New(CategoryAuth, message, nil)
}

func NewNetworkError(message string) *EnhancedError {
	return New(CategoryNetwork, message, nil)
}

func NewTimeoutError(message string) *EnhancedError {
	return New(CategoryTimeout, message, nil)
}

func NewValidationError(message string) *EnhancedError {
	return New(CategoryValidation, message, nil)
}

// NewSubprocessError derives a resolution from the exit code: 127 means the
// command was not found, 126 means it was found but not executable.
func NewSubprocessError(message string, exitCode int) *EnhancedError {
	return New(CategorySubprocess, message, map[string]any{"exit_code": exitCode})
}

func NewParsingError(message string) *EnhancedError {
	return New(CategoryParsing, message, nil)
}

func NewPermissionError(message string) *EnhancedError {
	return New(CategoryPermission, message, nil)
}

func NewConfigurationError(message string) *EnhancedError {
	return New(CategoryConfiguration, message, nil)
}

func subprocessResolution(context map[string]any) string {
	code, ok := exitCode(context)
	if !ok {
		return DefaultResolution(CategorySubprocess)
	}
	switch code {
	case 127:
		return "The command was not found; check that it is installed and on PATH."
	case 126:
		return "The command was found but is not executable; check its permissions."
	default:
		return "The process exited with code " + strconv.Itoa(code) + "; inspect its stderr output."
	}
}

func exitCode(context map[string]any) (int, bool) {
	if context == nil {
		return 0, false
	}
	switch v := context["exit_code"].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// Enhance classifies err by its message and wraps it as the cause of a new
// enhanced error. It is pure: enhancing an already-enhanced error re-derives
// the category from the message without losing the original cause chain.
func Enhance(err error) *EnhancedError {
	return EnhanceWith(DefaultRules(), err)
}

// EnhanceWith is Enhance using a specific rule set.
func EnhanceWith(rules *RuleSet, err error) *EnhancedError {
	if err == nil {
		return nil
	}
	msg := err.Error()
	return New(rules.Classify(msg), msg, nil).WithCause(err)
}
