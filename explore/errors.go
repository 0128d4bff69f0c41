package explore

import "fmt"

// ValidationError reports bad action parameters. It is never retried and
// short-circuits execution before any tool is invoked.
type ValidationError struct {
	Kind   ActionKind
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid parameters for %s: field %q %s", e.Kind, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid parameters for %s: %s", e.Kind, e.Reason)
}

// ToolExecutionError reports a failed or timed-out tool call. Retried up to
// the configured retry budget.
type ToolExecutionError struct {
	Kind     ActionKind
	TimedOut bool
	Cause    error
}

func (e *ToolExecutionError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("tool %s timed out", e.Kind)
	}
	return fmt.Sprintf("tool %s failed: %v", e.Kind, e.Cause)
}

func (e *ToolExecutionError) Unwrap() error { return e.Cause }

// ResultValidationError reports a malformed or empty tool result. Retried.
type ResultValidationError struct {
	Kind   ActionKind
	Reason string
}

func (e *ResultValidationError) Error() string {
	return fmt.Sprintf("tool %s returned an invalid result: %s", e.Kind, e.Reason)
}

// StuckLoopError reports a detected repetition that recovery could not
// resolve. The loop aborts when it escalates.
type StuckLoopError struct {
	Pattern    string
	StuckCount int
}

func (e *StuckLoopError) Error() string {
	return fmt.Sprintf("stuck loop (%s) after %d recovery attempts", e.Pattern, e.StuckCount)
}

// BudgetExceededError reports an exhausted iteration or time budget. The
// loop ends cleanly; this is not a crash.
type BudgetExceededError struct {
	Budget string // "max_iterations", "total_timeout", or "iteration_timeout"
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("budget exceeded: %s", e.Budget)
}

// CircuitBreakerError reports that the consecutive-error threshold was
// reached and the loop aborted.
type CircuitBreakerError struct {
	ConsecutiveErrors int
}

func (e *CircuitBreakerError) Error() string {
	return fmt.Sprintf("circuit breaker tripped after %d consecutive errors", e.ConsecutiveErrors)
}
