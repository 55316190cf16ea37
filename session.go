package verdict

import "reflect"

// Session is one evaluation scope. It owns exactly one authorization
// context, one reason collector, and one memoization cache, and it must not
// outlive the logical request it was created for. Two sessions never share
// mutable state, so independent sessions may run concurrently; within one
// session, evaluations are synchronous and call-stack-bound.
//
// Memoization keys checks by target identity. A target whose runtime type
// is not comparable cannot be an identity key, so such checks are evaluated
// every time instead of being memoized.
type Session struct {
	authctx   *AuthContext
	collector *Collector
	memo      map[memoKey]*Result
	inflight  map[memoKey]struct{}
}

// memoKey identifies one evaluation: target identity, canonical rule name,
// and the resolved policy. Identity is by value/reference equality, never
// deep comparison. The in-flight guard reuses the key shape with a nil
// target for checks whose target has no identity.
type memoKey struct {
	target    any
	rule      string
	policy    string
	namespace string
}

// SessionOption configures a Session.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	authctx   *AuthContext
	values    []contextValue
	resolvers []contextResolver
}

type contextValue struct {
	key   string
	value any
}

type contextResolver struct {
	key string
	fn  Resolver
}

// WithAuthContext sets the session's authorization context. It may appear
// anywhere in the option list; value and resolver options always land on
// the context the session ends up with.
func WithAuthContext(a *AuthContext) SessionOption {
	return func(o *sessionOptions) { o.authctx = a }
}

// WithContextValue supplies an eager authorization context value.
func WithContextValue(key string, value any) SessionOption {
	return func(o *sessionOptions) {
		o.values = append(o.values, contextValue{key: key, value: value})
	}
}

// WithContextResolver registers a lazy authorization context resolver.
func WithContextResolver(key string, fn Resolver) SessionOption {
	return func(o *sessionOptions) {
		o.resolvers = append(o.resolvers, contextResolver{key: key, fn: fn})
	}
}

// NewSession creates an evaluation scope. Create one per logical request.
func (e *Engine) NewSession(opts ...SessionOption) *Session {
	var so sessionOptions
	for _, opt := range opts {
		opt(&so)
	}
	a := so.authctx
	if a == nil {
		a = NewAuthContext()
	}
	for _, v := range so.values {
		a.set(v.key, v.value)
	}
	for _, r := range so.resolvers {
		a.setResolver(r.key, r.fn)
	}
	return &Session{
		authctx:   a,
		collector: NewCollector(),
		memo:      make(map[memoKey]*Result),
		inflight:  make(map[memoKey]struct{}),
	}
}

// AuthContext returns the session's authorization context.
func (s *Session) AuthContext() *AuthContext { return s.authctx }

// key builds the memoization key for a check. The second return is false
// when the target cannot be memoized.
func (s *Session) key(target any, rule, policy, namespace string) (memoKey, bool) {
	t := reflect.TypeOf(target)
	if t == nil || !t.Comparable() {
		return memoKey{}, false
	}
	return memoKey{target: target, rule: rule, policy: policy, namespace: namespace}, true
}
