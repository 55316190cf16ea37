// Package plugin defines the plugin system for Verdict.
// Plugins are notified of lifecycle events (authorization evaluated,
// scope applied, shutdown) and can react: logging, metrics, tracing.
//
// Each lifecycle hook is a separate interface so plugins opt in only
// to the events they care about.
package plugin

import (
	"context"
)

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// BeforeAuthorize is called before an authorization check is evaluated.
// The target is the domain object under evaluation.
type BeforeAuthorize interface {
	OnBeforeAuthorize(ctx context.Context, target any, rule string) error
}

// AfterAuthorize is called after an authorization check completes.
// The result parameter is *verdict.Result (passed as any to avoid an
// import cycle).
type AfterAuthorize interface {
	OnAfterAuthorize(ctx context.Context, target any, rule string, result any) error
}

// ScopeApplied is called after a collection scope has been resolved.
type ScopeApplied interface {
	OnScopeApplied(ctx context.Context, policy, namespace string) error
}

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
