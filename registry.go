package verdict

import (
	"fmt"
	"reflect"
	"strings"
)

// Policier lets a target type declare the name of its policy, as a
// convenience over explicit per-type registration.
type Policier interface {
	PolicyName() string
}

// DefaultNamespace is the namespace used when none is given.
const DefaultNamespace = ""

type typeKey struct {
	target    reflect.Type
	namespace string
}

type nameKey struct {
	name      string
	namespace string
}

// Registry maps (target type, namespace) pairs to policy definitions.
// It is populated once at configuration time; registration after the engine
// starts serving checks is not a supported mutation path, which is what
// makes concurrent lookups safe without locking.
//
// Resolution order for a target: explicit type mapping in the requested
// namespace, explicit type mapping in the default namespace, then the
// target's declared policy name (Policier), then the lowercased type name
// when inference is enabled. Each name is tried in the requested namespace
// before the default one.
type Registry struct {
	byType map[typeKey]*Definition
	byName map[nameKey]*Definition
	infer  bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithInference resolves unregistered target types against named
// definitions using the lowercased type name. Explicit registrations always
// win over inference.
func WithInference() RegistryOption {
	return func(r *Registry) { r.infer = true }
}

// NewRegistry creates an empty policy registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		byType: make(map[typeKey]*Definition),
		byName: make(map[nameKey]*Definition),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register binds target's type to def in the default namespace. Passing a
// pointer and a value registers distinct types. Re-registering a type
// replaces the previous definition (per-application override).
func (r *Registry) Register(target any, def *Definition) {
	r.RegisterNamespace(target, DefaultNamespace, def)
}

// RegisterNamespace binds target's type to def in the given namespace.
func (r *Registry) RegisterNamespace(target any, namespace string, def *Definition) {
	if def == nil || def.Name == "" {
		panic("verdict: register requires a definition with a name")
	}
	t := reflect.TypeOf(target)
	if t == nil {
		panic("verdict: cannot register a nil target")
	}
	r.byType[typeKey{target: t, namespace: namespace}] = def
	r.byName[nameKey{name: def.Name, namespace: namespace}] = def
}

// RegisterName binds a policy name to def in the default namespace, for
// targets resolved through Policier or inference rather than their type.
func (r *Registry) RegisterName(name string, def *Definition) {
	r.RegisterNameNamespace(name, DefaultNamespace, def)
}

// RegisterNameNamespace binds a policy name to def in the given namespace.
func (r *Registry) RegisterNameNamespace(name, namespace string, def *Definition) {
	if def == nil || name == "" {
		panic("verdict: register requires a name and a definition")
	}
	r.byName[nameKey{name: name, namespace: namespace}] = def
}

// Lookup resolves the policy for target in namespace. Fails with
// ErrPolicyNotFound when no mapping and no inference rule applies; it never
// silently picks an unrelated policy.
func (r *Registry) Lookup(target any, namespace string) (*Definition, error) {
	t := reflect.TypeOf(target)
	if t != nil {
		if def, ok := r.byType[typeKey{target: t, namespace: namespace}]; ok {
			return def, nil
		}
		if namespace != DefaultNamespace {
			if def, ok := r.byType[typeKey{target: t, namespace: DefaultNamespace}]; ok {
				return def, nil
			}
		}
	}

	if p, ok := target.(Policier); ok {
		return r.LookupName(p.PolicyName(), namespace)
	}
	if r.infer && t != nil {
		if def, err := r.LookupName(inferredName(t), namespace); err == nil {
			return def, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPolicyNotFound, typeName(t))
}

// LookupName resolves a policy by name, preferring the namespace-qualified
// variant and falling back to the default namespace.
func (r *Registry) LookupName(name, namespace string) (*Definition, error) {
	if def, ok := r.byName[nameKey{name: name, namespace: namespace}]; ok {
		return def, nil
	}
	if namespace != DefaultNamespace {
		if def, ok := r.byName[nameKey{name: name, namespace: DefaultNamespace}]; ok {
			return def, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrPolicyNotFound, name)
}

// inferredName derives a policy name from a target type: "*blog.Post"
// becomes "post".
func inferredName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return strings.ToLower(t.Name())
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
