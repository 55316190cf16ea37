package verdict

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/xraph/verdict/decisionlog"
	"github.com/xraph/verdict/id"
	"github.com/xraph/verdict/plugin"
	"github.com/xraph/verdict/store"
)

// Engine is the central authorization engine. It resolves policies through
// the registry, evaluates rules within a session, records decisions, and
// fires plugin hooks.
type Engine struct {
	registry *Registry
	config   Config
	store    store.Store
	plugins  *plugin.Registry
	logger   *slog.Logger
}

// NewEngine creates an engine with the given options. A registry is
// required.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		return nil, errors.New("verdict: registry is required")
	}
	return e, nil
}

// Registry returns the policy registry.
func (e *Engine) Registry() *Registry { return e.registry }

// Store returns the decision log store (may be nil).
func (e *Engine) Store() store.Store { return e.store }

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.config }

// Start performs any startup initialization.
func (e *Engine) Start(_ context.Context) error { return nil }

// Stop performs graceful shutdown, firing plugin shutdown hooks.
func (e *Engine) Stop(ctx context.Context) error {
	if e.plugins != nil {
		e.plugins.EmitShutdown(ctx)
	}
	return nil
}

// CheckOption configures a single check.
type CheckOption func(*checkOptions)

type checkOptions struct {
	rule       string
	namespace  string
	policy     *Definition
	policyName string
	raise      bool
}

// WithNamespace resolves the policy in the given namespace, falling back to
// the default namespace.
func WithNamespace(ns string) CheckOption {
	return func(co *checkOptions) { co.namespace = ns }
}

// WithPolicy overrides policy resolution with an explicit definition.
func WithPolicy(def *Definition) CheckOption {
	return func(co *checkOptions) { co.policy = def }
}

// WithPolicyName overrides policy resolution with a registered policy name.
func WithPolicyName(name string) CheckOption {
	return func(co *checkOptions) { co.policyName = name }
}

// WithRaise makes this check return *NotAuthorizedError on denial.
func WithRaise() CheckOption {
	return func(co *checkOptions) { co.raise = true }
}

// WithoutRaise makes this check return a value=false result on denial
// instead of an error.
func WithoutRaise() CheckOption {
	return func(co *checkOptions) { co.raise = false }
}

func (e *Engine) newCheckOptions(rule string, opts []CheckOption) checkOptions {
	co := checkOptions{rule: rule, raise: e.config.raiseOnDeny()}
	for _, opt := range opts {
		opt(&co)
	}
	return co
}

// Authorize evaluates rule against target within the session. An empty rule
// evaluates the policy's default rule. On denial it returns a
// *NotAuthorizedError carrying the full result when raising is in effect,
// or the value=false result otherwise. Configuration defects
// (ErrPolicyNotFound, ErrRuleNotFound, ErrUnresolvableContextKey,
// ErrRecursiveEvaluation) are returned as errors distinct from denial.
func (e *Engine) Authorize(ctx context.Context, sess *Session, target any, rule string, opts ...CheckOption) (*Result, error) {
	co := e.newCheckOptions(rule, opts)

	if e.plugins != nil {
		e.plugins.EmitBeforeAuthorize(ctx, target, co.rule)
	}

	res, err := e.evaluate(ctx, sess, target, co)
	if err != nil {
		return nil, err
	}

	e.logDecision(ctx, sess, target, res)
	if e.plugins != nil {
		e.plugins.EmitAfterAuthorize(ctx, target, res.Rule, res)
	}

	if !res.Value && co.raise {
		return nil, &NotAuthorizedError{Result: res}
	}
	return res, nil
}

// AllowedTo is the non-raising shorthand: it reports whether rule is
// permitted on target.
func (e *Engine) AllowedTo(ctx context.Context, sess *Session, rule string, target any, opts ...CheckOption) (bool, error) {
	res, err := e.Authorize(ctx, sess, target, rule, append(opts, WithoutRaise())...)
	if err != nil {
		return false, err
	}
	return res.Value, nil
}

// evaluate resolves the policy, consults the session cache, and runs the
// rule inside a reason frame. This is the hot path shared by Authorize and
// nested Check.AllowedTo calls.
func (e *Engine) evaluate(ctx context.Context, sess *Session, target any, co checkOptions) (*Result, error) {
	def, err := e.resolvePolicy(target, co)
	if err != nil {
		return nil, err
	}

	ruleName := co.rule
	if ruleName == "" {
		ruleName = def.defaultRule(e.config.defaultRule())
	}
	canonical, fn, ok := def.resolveRule(ruleName)
	if !ok {
		return nil, fmt.Errorf("%w: %q on policy %q", ErrRuleNotFound, ruleName, def.Name)
	}

	key, memoizable := sess.key(target, canonical, def.Name, co.namespace)
	if memoizable {
		if cached, hit := sess.memo[key]; hit {
			// Replay the cached failure into the caller's frame so nested
			// memo hits still contribute to the parent's reason tree.
			if cached.Reasons != nil {
				sess.collector.add(cached.Reasons)
			}
			return cached, nil
		}
	} else {
		// A target without identity cannot key the memo, so the in-flight
		// guard falls back to the (policy, rule) pair alone. Re-entering
		// that pair with another identity-free target is indistinguishable
		// from self-recursion and is rejected the same way.
		key = memoKey{rule: canonical, policy: def.Name, namespace: co.namespace}
	}
	if _, running := sess.inflight[key]; running {
		return nil, fmt.Errorf("%w: %q on policy %q", ErrRecursiveEvaluation, canonical, def.Name)
	}
	sess.inflight[key] = struct{}{}
	defer delete(sess.inflight, key)

	start := time.Now()
	check := &Check{target: target, def: def, sess: sess, eng: e, namespace: co.namespace}
	value, node, err := sess.collector.WithFrame(def.Name, canonical, func() (bool, error) {
		return fn(ctx, check)
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		Value:      value,
		Rule:       ruleName,
		Policy:     def.Name,
		Namespace:  co.namespace,
		Reasons:    node,
		EvalTimeNs: time.Since(start).Nanoseconds(),
	}
	if memoizable {
		sess.memo[key] = res
	}
	return res, nil
}

// AuthorizedScope applies the resolved policy's scope to a collection.
// The policy is resolved from the collection's registered type unless a
// WithPolicy or WithPolicyName option names it explicitly. Fails with
// ErrScopeNotDefined when the policy has no scope.
func (e *Engine) AuthorizedScope(ctx context.Context, sess *Session, collection any, opts ...CheckOption) (any, error) {
	co := e.newCheckOptions("", opts)
	def, err := e.resolvePolicy(collection, co)
	if err != nil {
		return nil, err
	}
	if def.Scope == nil {
		return nil, fmt.Errorf("%w: %q", ErrScopeNotDefined, def.Name)
	}

	check := &Check{target: collection, def: def, sess: sess, eng: e, namespace: co.namespace}
	scoped, err := def.Scope(ctx, check, collection)
	if err != nil {
		return nil, fmt.Errorf("verdict: scope %q: %w", def.Name, err)
	}
	if e.plugins != nil {
		e.plugins.EmitScopeApplied(ctx, def.Name, co.namespace)
	}
	return scoped, nil
}

// PermissionSet evaluates the given rules against target without raising
// and returns the results keyed by the configured field prefix plus the
// rule name, "edit?" becoming "can_edit". This backs exposed permission
// fields in binding layers.
func (e *Engine) PermissionSet(ctx context.Context, sess *Session, target any, rules ...string) (map[string]*Result, error) {
	set := make(map[string]*Result, len(rules))
	for _, rule := range rules {
		res, err := e.Authorize(ctx, sess, target, rule, WithoutRaise())
		if err != nil {
			return nil, err
		}
		set[e.PermissionField(rule)] = res
	}
	return set, nil
}

// PermissionField renders the exposed field name for a rule using the
// configured prefix, read at call time.
func (e *Engine) PermissionField(rule string) string {
	return e.config.fieldPrefix() + strings.TrimSuffix(rule, "?")
}

func (e *Engine) resolvePolicy(target any, co checkOptions) (*Definition, error) {
	if co.policy != nil {
		return co.policy, nil
	}
	if co.policyName != "" {
		return e.registry.LookupName(co.policyName, co.namespace)
	}
	return e.registry.Lookup(target, co.namespace)
}

// logDecision records the result in the decision log. Best-effort: a store
// failure is logged and never changes the authorization outcome.
func (e *Engine) logDecision(ctx context.Context, sess *Session, target any, res *Result) {
	if e.store == nil {
		return
	}
	entry := &decisionlog.Entry{
		ID:         id.NewDecisionID(),
		Policy:     res.Policy,
		Rule:       res.Rule,
		Namespace:  res.Namespace,
		Value:      res.Value,
		Actor:      actorHint(sess),
		TargetType: typeName(reflect.TypeOf(target)),
		Reasons:    res.Details(),
		EvalTimeNs: res.EvalTimeNs,
	}
	if err := e.store.CreateDecision(ctx, entry); err != nil {
		e.logger.Warn("verdict: record decision",
			slog.String("policy", res.Policy),
			slog.String("rule", res.Rule),
			slog.String("error", err.Error()),
		)
	}
}

// actorHint renders the session's acting user, when already supplied or
// resolved, into a short string for the audit entry. It never triggers a
// resolver; an unresolved user yields an empty hint.
func actorHint(sess *Session) string {
	v, ok := sess.authctx.value(ContextKeyUser)
	if !ok || v == nil {
		return ""
	}
	switch u := v.(type) {
	case string:
		return u
	case fmt.Stringer:
		return u.String()
	default:
		return fmt.Sprintf("%T", u)
	}
}
