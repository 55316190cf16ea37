package extension

import (
	"github.com/xraph/verdict"
)

// Config holds the Verdict extension configuration.
// Fields can be set programmatically via ExtOption functions or loaded from
// YAML configuration files (under "extensions.verdict" or "verdict" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// Engine holds the authorization engine configuration.
	Engine verdict.Config `json:"engine" mapstructure:"engine" yaml:"engine"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Engine: verdict.DefaultConfig(),
	}
}
