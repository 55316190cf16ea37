package extension

import (
	"log/slog"

	"github.com/xraph/verdict"
	"github.com/xraph/verdict/api"
	"github.com/xraph/verdict/plugin"
	"github.com/xraph/verdict/store"
)

// ExtOption configures the Verdict Forge extension.
type ExtOption func(*Extension)

// WithRegistry sets the policy registry. The engine requires one.
func WithRegistry(reg *verdict.Registry) ExtOption {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, verdict.WithRegistry(reg))
	}
}

// WithStore sets the decision log backend.
func WithStore(s store.Store) ExtOption {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, verdict.WithStore(s))
	}
}

// WithConfig sets the extension configuration.
func WithConfig(cfg Config) ExtOption {
	return func(e *Extension) {
		e.config = cfg
	}
}

// WithEngineOptions adds engine-level options.
func WithEngineOptions(opts ...verdict.Option) ExtOption {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opts...)
	}
}

// WithPlugin registers a lifecycle hook plugin.
func WithPlugin(x plugin.Plugin) ExtOption {
	return func(e *Extension) {
		e.plugins = append(e.plugins, x)
	}
}

// WithTargetDecoder registers an HTTP target decoder for a policy name.
func WithTargetDecoder(policy string, dec api.TargetDecoder) ExtOption {
	return func(e *Extension) {
		e.apiOpts = append(e.apiOpts, api.WithTargetDecoder(policy, dec))
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ExtOption {
	return func(e *Extension) {
		e.logger = l
	}
}

// WithDisableRoutes disables the registration of HTTP routes.
func WithDisableRoutes() ExtOption {
	return func(e *Extension) {
		e.config.DisableRoutes = true
	}
}

// WithDisableMigrate disables auto-migration on start.
func WithDisableMigrate() ExtOption {
	return func(e *Extension) {
		e.config.DisableMigrate = true
	}
}
