package verdict

import (
	"log/slog"

	"github.com/xraph/verdict/plugin"
	"github.com/xraph/verdict/store"
)

// Option is a functional option for the Engine.
type Option func(*Engine)

// WithRegistry sets the policy registry.
func WithRegistry(r *Registry) Option { return func(e *Engine) { e.registry = r } }

// WithConfig sets the engine configuration.
func WithConfig(c Config) Option { return func(e *Engine) { e.config = c } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithStore sets the decision log store. Without one, decisions are not
// recorded.
func WithStore(s store.Store) Option { return func(e *Engine) { e.store = s } }

// WithPlugin registers a lifecycle hook plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		if e.plugins == nil {
			e.plugins = plugin.NewRegistry(e.logger)
		}
		e.plugins.Register(p)
	}
}
