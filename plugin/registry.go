package plugin

import (
	"context"
	"fmt"
	"log/slog"
)

// Named entry types pair a hook with the plugin name for logging.

type beforeAuthorizeEntry struct {
	name string
	hook BeforeAuthorize
}
type afterAuthorizeEntry struct {
	name string
	hook AfterAuthorize
}
type scopeAppliedEntry struct {
	name string
	hook ScopeApplied
}
type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered plugins and dispatches lifecycle events.
// It type-caches plugins at registration time so emit calls iterate
// only over plugins implementing the relevant hook.
type Registry struct {
	plugins []Plugin
	logger  *slog.Logger

	beforeAuthorize []beforeAuthorizeEntry
	afterAuthorize  []afterAuthorizeEntry
	scopeApplied    []scopeAppliedEntry
	shutdown        []shutdownEntry
}

// NewRegistry creates a plugin registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds a plugin and type-asserts it into all applicable
// hook caches. Plugins are notified in registration order.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
	name := p.Name()

	if h, ok := p.(BeforeAuthorize); ok {
		r.beforeAuthorize = append(r.beforeAuthorize, beforeAuthorizeEntry{name, h})
	}
	if h, ok := p.(AfterAuthorize); ok {
		r.afterAuthorize = append(r.afterAuthorize, afterAuthorizeEntry{name, h})
	}
	if h, ok := p.(ScopeApplied); ok {
		r.scopeApplied = append(r.scopeApplied, scopeAppliedEntry{name, h})
	}
	if h, ok := p.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// EmitBeforeAuthorize notifies all plugins that implement BeforeAuthorize.
func (r *Registry) EmitBeforeAuthorize(ctx context.Context, target any, rule string) {
	for _, e := range r.beforeAuthorize {
		r.dispatch("OnBeforeAuthorize", e.name, func() error {
			return e.hook.OnBeforeAuthorize(ctx, target, rule)
		})
	}
}

// EmitAfterAuthorize notifies all plugins that implement AfterAuthorize.
func (r *Registry) EmitAfterAuthorize(ctx context.Context, target any, rule string, result any) {
	for _, e := range r.afterAuthorize {
		r.dispatch("OnAfterAuthorize", e.name, func() error {
			return e.hook.OnAfterAuthorize(ctx, target, rule, result)
		})
	}
}

// EmitScopeApplied notifies all plugins that implement ScopeApplied.
func (r *Registry) EmitScopeApplied(ctx context.Context, policy, namespace string) {
	for _, e := range r.scopeApplied {
		r.dispatch("OnScopeApplied", e.name, func() error {
			return e.hook.OnScopeApplied(ctx, policy, namespace)
		})
	}
}

// EmitShutdown notifies all plugins that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		r.dispatch("OnShutdown", e.name, func() error {
			return e.hook.OnShutdown(ctx)
		})
	}
}

// dispatch runs a single hook invocation. A hook that returns an error or
// panics is logged and isolated from the caller and from other plugins.
func (r *Registry) dispatch(hook, pluginName string, fn func() error) {
	defer func() {
		if p := recover(); p != nil {
			r.logHookError(hook, pluginName, fmt.Errorf("panic: %v", p))
		}
	}()
	if err := fn(); err != nil {
		r.logHookError(hook, pluginName, err)
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated, they must not block evaluation.
func (r *Registry) logHookError(hook, pluginName string, err error) {
	r.logger.Warn("plugin hook error",
		slog.String("hook", hook),
		slog.String("plugin", pluginName),
		slog.String("error", err.Error()),
	)
}
