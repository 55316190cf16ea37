package api

import (
	"encoding/json"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/verdict"
)

func (a *API) registerAuthorizeRoutes(router forge.Router) error {
	g := router.Group("/v1/verdict", forge.WithGroupTags("authorization"))

	if err := g.POST("/authorize", a.authorize,
		forge.WithSummary("Authorization check"),
		forge.WithDescription("Evaluates the rule against the target and returns the result with failure reasons."),
		forge.WithOperationID("verdictAuthorize"),
		forge.WithRequestSchema(AuthorizeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Authorization result", AuthorizeResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/enforce", a.enforce,
		forge.WithSummary("Enforce authorization"),
		forge.WithDescription("Returns 200 if allowed, 403 if denied."),
		forge.WithOperationID("verdictEnforce"),
		forge.WithRequestSchema(AuthorizeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Allowed", AuthorizeResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/batch-authorize", a.batchAuthorize,
		forge.WithSummary("Batch authorization check"),
		forge.WithDescription("Evaluates multiple authorization checks in one request."),
		forge.WithOperationID("verdictBatchAuthorize"),
		forge.WithRequestSchema(BatchAuthorizeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Batch results", BatchAuthorizeResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/permissions", a.permissionSet,
		forge.WithSummary("Permission set"),
		forge.WithDescription("Evaluates multiple rules against one target and returns exposed permission fields."),
		forge.WithOperationID("verdictPermissionSet"),
		forge.WithRequestSchema(PermissionSetRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Permission set", PermissionSetResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) authorize(ctx forge.Context, req *AuthorizeRequest) (*AuthorizeResponse, error) {
	if req.Policy == "" {
		return nil, forge.BadRequest("policy is required")
	}

	target, err := a.decodeTarget(req.Policy, req.Target)
	if err != nil {
		return nil, err
	}
	sess := a.newSession(req.Context)

	result, err := a.eng.Authorize(ctx.Context(), sess, target, req.Rule,
		verdict.WithPolicyName(req.Policy),
		verdict.WithNamespace(req.Namespace),
		verdict.WithoutRaise(),
	)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toAuthorizeResponse(result)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) enforce(ctx forge.Context, req *AuthorizeRequest) (*AuthorizeResponse, error) {
	if req.Policy == "" {
		return nil, forge.BadRequest("policy is required")
	}

	target, err := a.decodeTarget(req.Policy, req.Target)
	if err != nil {
		return nil, err
	}
	sess := a.newSession(req.Context)

	result, err := a.eng.Authorize(ctx.Context(), sess, target, req.Rule,
		verdict.WithPolicyName(req.Policy),
		verdict.WithNamespace(req.Namespace),
		verdict.WithoutRaise(),
	)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toAuthorizeResponse(result)
	if !result.Value {
		return resp, ctx.JSON(http.StatusForbidden, resp)
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) batchAuthorize(ctx forge.Context, req *BatchAuthorizeRequest) (*BatchAuthorizeResponse, error) {
	if len(req.Checks) == 0 {
		return nil, forge.BadRequest("checks cannot be empty")
	}

	results := make([]AuthorizeResponse, len(req.Checks))
	for i := range req.Checks {
		c := &req.Checks[i]
		if c.Policy == "" {
			return nil, forge.BadRequest("policy is required")
		}
		target, err := a.decodeTarget(c.Policy, c.Target)
		if err != nil {
			return nil, err
		}
		// Each check carries its own context, so each gets its own scope.
		sess := a.newSession(c.Context)

		result, err := a.eng.Authorize(ctx.Context(), sess, target, c.Rule,
			verdict.WithPolicyName(c.Policy),
			verdict.WithNamespace(c.Namespace),
			verdict.WithoutRaise(),
		)
		if err != nil {
			return nil, mapError(err)
		}
		results[i] = *toAuthorizeResponse(result)
	}

	resp := &BatchAuthorizeResponse{Results: results}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) permissionSet(ctx forge.Context, req *PermissionSetRequest) (*PermissionSetResponse, error) {
	if req.Policy == "" {
		return nil, forge.BadRequest("policy is required")
	}
	if len(req.Rules) == 0 {
		return nil, forge.BadRequest("rules cannot be empty")
	}

	target, err := a.decodeTarget(req.Policy, req.Target)
	if err != nil {
		return nil, err
	}
	sess := a.newSession(req.Context)

	perms := make(map[string]bool, len(req.Rules))
	for _, rule := range req.Rules {
		result, err := a.eng.Authorize(ctx.Context(), sess, target, rule,
			verdict.WithPolicyName(req.Policy),
			verdict.WithNamespace(req.Namespace),
			verdict.WithoutRaise(),
		)
		if err != nil {
			return nil, mapError(err)
		}
		perms[a.eng.PermissionField(rule)] = result.Value
	}

	resp := &PermissionSetResponse{Permissions: perms}
	return resp, ctx.JSON(http.StatusOK, resp)
}

// decodeTarget resolves the policy's registered decoder, falling back to
// a generic map target when none is registered.
func (a *API) decodeTarget(policy string, raw json.RawMessage) (any, error) {
	if dec, ok := a.decoders[policy]; ok {
		target, err := dec(raw)
		if err != nil {
			return nil, forge.BadRequest("decode target: " + err.Error())
		}
		return target, nil
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, forge.BadRequest("invalid target payload")
	}
	return generic, nil
}

// newSession builds a per-request session carrying the supplied context
// values. Memoization never outlives the request.
func (a *API) newSession(values map[string]any) *verdict.Session {
	opts := make([]verdict.SessionOption, 0, len(values))
	for k, v := range values {
		opts = append(opts, verdict.WithContextValue(k, v))
	}
	return a.eng.NewSession(opts...)
}
