package api

import (
	"github.com/xraph/verdict"
)

// AuthorizeResponse is the response for an authorization check.
type AuthorizeResponse struct {
	Value      bool                `json:"value" description:"Whether the rule passed"`
	Rule       string              `json:"rule" description:"Evaluated rule"`
	Policy     string              `json:"policy" description:"Resolved policy"`
	Namespace  string              `json:"namespace,omitempty" description:"Policy namespace"`
	Message    string              `json:"message,omitempty" description:"Denial message (denied checks only)"`
	Reasons    map[string][]string `json:"reasons,omitempty" description:"Failed rules grouped by policy (denied checks only)"`
	EvalTimeNs int64               `json:"eval_time_ns" description:"Evaluation time in nanoseconds"`
}

// BatchAuthorizeResponse contains results for multiple checks.
type BatchAuthorizeResponse struct {
	Results []AuthorizeResponse `json:"results" description:"Check results in order"`
}

// PermissionSetResponse maps permission field names to their outcomes.
type PermissionSetResponse struct {
	Permissions map[string]bool `json:"permissions" description:"Permission fields, e.g. can_edit"`
}

// PurgeDecisionsResponse reports how many entries a purge removed.
type PurgeDecisionsResponse struct {
	Purged int64 `json:"purged" description:"Number of entries removed"`
}

func toAuthorizeResponse(r *verdict.Result) *AuthorizeResponse {
	resp := &AuthorizeResponse{
		Value:      r.Value,
		Rule:       r.Rule,
		Policy:     r.Policy,
		Namespace:  r.Namespace,
		EvalTimeNs: r.EvalTimeNs,
	}
	if !r.Value {
		resp.Message = r.Message()
		resp.Reasons = r.Details()
	}
	return resp
}
