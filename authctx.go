package verdict

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Resolver produces the value for one authorization context key.
type Resolver func(ctx context.Context) (any, error)

// AuthContext carries the ambient values rules evaluate against, such as
// the acting user or tenant. Values are supplied eagerly or
// resolved lazily through registered resolvers; a resolved key is memoized
// for the lifetime of the context, and first-time resolution is
// single-flight safe under concurrent access.
type AuthContext struct {
	mu        sync.Mutex
	group     singleflight.Group
	resolvers map[string]Resolver
	values    map[string]any
}

// AuthContextOption configures an AuthContext.
type AuthContextOption func(*AuthContext)

// WithKeyValue supplies an eager value for a context key.
func WithKeyValue(key string, value any) AuthContextOption {
	return func(a *AuthContext) { a.values[key] = value }
}

// WithKeyResolver registers a lazy resolver for a context key.
func WithKeyResolver(key string, fn Resolver) AuthContextOption {
	return func(a *AuthContext) { a.resolvers[key] = fn }
}

// NewAuthContext creates an authorization context.
func NewAuthContext(opts ...AuthContextOption) *AuthContext {
	a := &AuthContext{
		resolvers: make(map[string]Resolver),
		values:    make(map[string]any),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Resolve returns the value for key, running its resolver on first access.
// The resolver runs at most once even when two evaluations race on the same
// key. Fails with ErrUnresolvableContextKey when the key has neither an
// eager value nor a resolver. Resolver errors are not memoized.
func (a *AuthContext) Resolve(ctx context.Context, key string) (any, error) {
	a.mu.Lock()
	v, ok := a.values[key]
	a.mu.Unlock()
	if ok {
		return v, nil
	}

	v, err, _ := a.group.Do(key, func() (any, error) {
		a.mu.Lock()
		if v, ok := a.values[key]; ok {
			a.mu.Unlock()
			return v, nil
		}
		fn := a.resolvers[key]
		a.mu.Unlock()

		if fn == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnresolvableContextKey, key)
		}
		v, err := fn(ctx)
		if err != nil {
			return nil, fmt.Errorf("verdict: resolve context key %q: %w", key, err)
		}

		a.mu.Lock()
		a.values[key] = v
		a.mu.Unlock()
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// value returns the eager or already-resolved value for key without
// running any resolver.
func (a *AuthContext) value(key string) (any, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, ok := a.values[key]
	return v, ok
}

// Has reports whether key has an eager value or a registered resolver.
func (a *AuthContext) Has(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.values[key]; ok {
		return true
	}
	_, ok := a.resolvers[key]
	return ok
}

// set stores an eager value. Used by session options; not exported because
// an AuthContext is immutable once evaluation starts.
func (a *AuthContext) set(key string, value any) {
	a.mu.Lock()
	a.values[key] = value
	a.mu.Unlock()
}

// setResolver registers a resolver. See set.
func (a *AuthContext) setResolver(key string, fn Resolver) {
	a.mu.Lock()
	a.resolvers[key] = fn
	a.mu.Unlock()
}
