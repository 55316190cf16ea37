package verdict

import (
	"errors"
	"fmt"
)

var (
	// ErrPolicyNotFound is returned when no policy is registered for a
	// target. This is a configuration defect, never a denial.
	ErrPolicyNotFound = errors.New("verdict: no policy registered for target")

	// ErrRuleNotFound is returned when a policy defines no rule (or alias)
	// under the requested name.
	ErrRuleNotFound = errors.New("verdict: rule not found")

	// ErrScopeNotDefined is returned when scoping is requested against a
	// policy that defines no scope. Silently returning the unfiltered
	// collection would be a security defect, so this is loud.
	ErrScopeNotDefined = errors.New("verdict: policy does not define a scope")

	// ErrUnresolvableContextKey is returned when a context key has neither
	// an eager value nor a registered resolver.
	ErrUnresolvableContextKey = errors.New("verdict: unresolvable context key")

	// ErrRecursiveEvaluation is returned when a rule transitively
	// re-invokes itself within one evaluation scope.
	ErrRecursiveEvaluation = errors.New("verdict: recursive rule evaluation")
)

// NotAuthorizedError is the expected, recoverable denial outcome in raising
// mode. It carries the full Result, reason tree included, so the caller
// can render messages and structured details without re-deriving them.
type NotAuthorizedError struct {
	Result *Result
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("verdict: not authorized to %s this %s", e.Result.Rule, e.Result.Policy)
}
