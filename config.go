package verdict

// Config holds process-wide evaluation defaults. Every toggle is read at
// call time rather than baked into the evaluation algorithm, so per-call
// options can override each one.
type Config struct {
	// RaiseOnDeny makes Authorize return a *NotAuthorizedError on denial.
	// Defaults to true.
	RaiseOnDeny *bool `json:"raise_on_deny,omitempty" mapstructure:"raise_on_deny" yaml:"raise_on_deny"`

	// DefaultRule is evaluated when a check names no rule.
	// Defaults to "show?".
	DefaultRule string `json:"default_rule,omitempty" mapstructure:"default_rule" yaml:"default_rule"`

	// FieldPrefix prefixes the keys of PermissionSet results.
	// Defaults to "can_".
	FieldPrefix string `json:"authorization_field_prefix,omitempty" mapstructure:"authorization_field_prefix" yaml:"authorization_field_prefix"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	t := true
	return Config{
		RaiseOnDeny: &t,
		DefaultRule: "show?",
		FieldPrefix: "can_",
	}
}

func (c Config) raiseOnDeny() bool { return c.RaiseOnDeny == nil || *c.RaiseOnDeny }

func (c Config) defaultRule() string {
	if c.DefaultRule == "" {
		return "show?"
	}
	return c.DefaultRule
}

func (c Config) fieldPrefix() string {
	if c.FieldPrefix == "" {
		return "can_"
	}
	return c.FieldPrefix
}
