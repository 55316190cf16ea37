package verdict

import "context"

// Rule is a named predicate: it decides whether the bound check's
// authorization context permits this rule on the target. A rule may run
// nested checks through Check.AllowedTo; nested failures are captured into
// the current reason frame automatically.
type Rule func(ctx context.Context, c *Check) (bool, error)

// ScopeFunc transforms a collection according to a policy's access rules.
// It may filter, rewrite, or pass the collection through unchanged.
type ScopeFunc func(ctx context.Context, c *Check, collection any) (any, error)

// Definition declares one policy: its identifier, its rule table, alias
// rules that delegate to another rule's implementation, the default rule
// used when a check names none, and an optional collection scope.
//
// Definitions are registered at configuration time and must not be mutated
// afterwards.
type Definition struct {
	// Name identifies the policy in results, reasons, and the decision log.
	Name string

	// Rules maps rule name to predicate.
	Rules map[string]Rule

	// Aliases maps a rule name to the name of the rule that implements it.
	// Alias chains are followed; a chain that never reaches a rule resolves
	// to nothing.
	Aliases map[string]string

	// DefaultRule overrides the engine-wide default rule for this policy.
	DefaultRule string

	// Scope applies this policy to a collection. When nil, AuthorizedScope
	// fails with ErrScopeNotDefined.
	Scope ScopeFunc
}

// resolveRule resolves name through the alias table to a concrete rule.
// Returns the canonical rule name, the predicate, and whether it exists.
func (d *Definition) resolveRule(name string) (string, Rule, bool) {
	seen := make(map[string]struct{})
	for {
		if fn, ok := d.Rules[name]; ok {
			return name, fn, true
		}
		next, ok := d.Aliases[name]
		if !ok {
			return name, nil, false
		}
		if _, cyclic := seen[next]; cyclic {
			return name, nil, false
		}
		seen[next] = struct{}{}
		name = next
	}
}

// defaultRule returns the rule evaluated when a check names none.
func (d *Definition) defaultRule(engineDefault string) string {
	if d.DefaultRule != "" {
		return d.DefaultRule
	}
	return engineDefault
}

// Extend derives a new definition from base with override applied: override
// rules and aliases shadow the base's, and a non-empty override name,
// default rule, or scope replaces the base's. This is the inheritance
// mechanism for per-application policy variants.
func Extend(base, override *Definition) *Definition {
	d := &Definition{
		Name:        base.Name,
		DefaultRule: base.DefaultRule,
		Scope:       base.Scope,
		Rules:       make(map[string]Rule, len(base.Rules)+len(override.Rules)),
		Aliases:     make(map[string]string, len(base.Aliases)+len(override.Aliases)),
	}
	for name, fn := range base.Rules {
		d.Rules[name] = fn
	}
	for name, target := range base.Aliases {
		d.Aliases[name] = target
	}
	for name, fn := range override.Rules {
		d.Rules[name] = fn
	}
	for name, target := range override.Aliases {
		d.Aliases[name] = target
	}
	if override.Name != "" {
		d.Name = override.Name
	}
	if override.DefaultRule != "" {
		d.DefaultRule = override.DefaultRule
	}
	if override.Scope != nil {
		d.Scope = override.Scope
	}
	return d
}

// Check is one bound evaluation: a target paired with the session's
// authorization context. Rule predicates receive it to read the target,
// resolve context values, and run nested checks with reason capture.
type Check struct {
	target    any
	def       *Definition
	sess      *Session
	eng       *Engine
	namespace string
}

// Target returns the object under evaluation.
func (c *Check) Target() any { return c.target }

// PolicyName returns the name of the policy this check is bound to.
func (c *Check) PolicyName() string { return c.def.Name }

// Resolve returns the authorization context value for key.
func (c *Check) Resolve(ctx context.Context, key string) (any, error) {
	return c.sess.authctx.Resolve(ctx, key)
}

// User resolves the conventional "user" context key.
func (c *Check) User(ctx context.Context) (any, error) {
	return c.Resolve(ctx, ContextKeyUser)
}

// AllowedTo runs a nested rule check against target, which may be the same
// target, a related object, or anything else with a registered policy. A
// failing nested check
// is folded into the current reason frame and reported as false;
// configuration defects propagate as errors. The nested check shares this
// check's session, so it is memoized and recursion-guarded with it.
func (c *Check) AllowedTo(ctx context.Context, rule string, target any, opts ...CheckOption) (bool, error) {
	co := c.eng.newCheckOptions(rule, opts)
	if co.namespace == "" {
		co.namespace = c.namespace
	}
	res, err := c.eng.evaluate(ctx, c.sess, target, co)
	if err != nil {
		return false, err
	}
	return res.Value, nil
}

// Deny records an explicit extra failure reason against this check's policy
// and returns false, for rules that want to surface a cause beyond their
// own name.
func (c *Check) Deny(rule string) bool {
	c.sess.collector.RecordFailure(c.def.Name, rule)
	return false
}
