// Package middleware provides HTTP authorization middleware for Verdict.
package middleware

import (
	"encoding/json"

	"github.com/xraph/forge"

	"github.com/xraph/verdict"
)

// TargetResolver extracts the evaluation target from the request, e.g. by
// loading the record named in a path parameter. A nil resolver evaluates
// against a nil target, which only works with explicitly named policies.
type TargetResolver func(ctx forge.Context) (any, error)

// Require enforces a single rule. The actor is resolved from the request
// context (Authsome user ID, anonymous otherwise) and exposed to rules
// under the "user" context key.
func Require(eng *verdict.Engine, rule string, resolve TargetResolver, opts ...verdict.CheckOption) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			sess := newSession(eng, ctx)
			target, err := resolveTarget(ctx, resolve)
			if err != nil {
				return err
			}

			res, err := eng.Authorize(ctx.Context(), sess, target, rule,
				append(opts, verdict.WithoutRaise())...)
			if err != nil {
				return err
			}
			if !res.Value {
				return denyResponse(ctx, res)
			}
			return next(ctx)
		}
	}
}

// RequireAny allows the request if ANY of the rules pass on the target.
func RequireAny(eng *verdict.Engine, rules []string, resolve TargetResolver, opts ...verdict.CheckOption) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			sess := newSession(eng, ctx)
			target, err := resolveTarget(ctx, resolve)
			if err != nil {
				return err
			}

			var last *verdict.Result
			for _, rule := range rules {
				res, err := eng.Authorize(ctx.Context(), sess, target, rule,
					append(opts, verdict.WithoutRaise())...)
				if err != nil {
					return err
				}
				if res.Value {
					return next(ctx)
				}
				last = res
			}
			return denyResponse(ctx, last)
		}
	}
}

// RequireAll allows the request only if ALL rules pass on the target.
func RequireAll(eng *verdict.Engine, rules []string, resolve TargetResolver, opts ...verdict.CheckOption) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			sess := newSession(eng, ctx)
			target, err := resolveTarget(ctx, resolve)
			if err != nil {
				return err
			}

			for _, rule := range rules {
				res, err := eng.Authorize(ctx.Context(), sess, target, rule,
					append(opts, verdict.WithoutRaise())...)
				if err != nil {
					return err
				}
				if !res.Value {
					return denyResponse(ctx, res)
				}
			}
			return next(ctx)
		}
	}
}

// newSession builds a per-request session seeded with the actor.
// Priority: Forge user ID (from Authsome) > anonymous.
func newSession(eng *verdict.Engine, ctx forge.Context) *verdict.Session {
	if userID := forge.UserIDFromContext(ctx.Context()); userID != "" {
		return eng.NewSession(verdict.WithContextValue(verdict.ContextKeyUser, userID))
	}
	return eng.NewSession()
}

func resolveTarget(ctx forge.Context, resolve TargetResolver) (any, error) {
	if resolve == nil {
		return nil, nil
	}
	return resolve(ctx)
}

func denyResponse(ctx forge.Context, res *verdict.Result) error {
	body := map[string]any{"error": verdict.DeniedMessage}
	if res != nil {
		body["message"] = res.Message()
		if details := res.Details(); len(details) > 0 {
			body["reasons"] = details
		}
	}
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(403)
	return json.NewEncoder(ctx.Response()).Encode(body)
}
