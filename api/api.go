// Package api provides HTTP handlers for the Verdict authorization engine.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/verdict"
)

// TargetDecoder turns the raw target payload of an authorization request
// into the domain value a policy evaluates. Decoders are registered per
// policy name; requests for policies without a decoder fall back to a
// generic map target.
type TargetDecoder func(raw json.RawMessage) (any, error)

// API wires all Verdict HTTP handlers together.
type API struct {
	eng      *verdict.Engine
	router   forge.Router
	decoders map[string]TargetDecoder
}

// Option configures the API.
type Option func(*API)

// WithTargetDecoder registers a decoder for the given policy name.
func WithTargetDecoder(policy string, dec TargetDecoder) Option {
	return func(a *API) { a.decoders[policy] = dec }
}

// New creates an API from an Engine and a Forge router.
func New(eng *verdict.Engine, router forge.Router, opts ...Option) *API {
	a := &API{
		eng:      eng,
		router:   router,
		decoders: make(map[string]TargetDecoder),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handler returns the fully assembled http.Handler with all routes.
func (a *API) Handler() http.Handler {
	if a.router == nil {
		a.router = forge.NewRouter()
	}
	if err := a.RegisterRoutes(a.router); err != nil {
		panic("verdict: register routes: " + err.Error())
	}
	return a.router.Handler()
}

// RegisterRoutes registers all API routes into the given Forge router.
func (a *API) RegisterRoutes(router forge.Router) error {
	registerers := []func(forge.Router) error{
		a.registerAuthorizeRoutes,
		a.registerDecisionRoutes,
	}
	for _, fn := range registerers {
		if err := fn(router); err != nil {
			return err
		}
	}
	return nil
}
