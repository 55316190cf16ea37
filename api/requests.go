package api

import (
	"encoding/json"
)

// AuthorizeRequest is the request body for an authorization check.
type AuthorizeRequest struct {
	Policy    string          `json:"policy" description:"Registered policy name"`
	Rule      string          `json:"rule,omitempty" description:"Rule to evaluate (defaults to the policy's default rule)"`
	Namespace string          `json:"namespace,omitempty" description:"Policy namespace"`
	Target    json.RawMessage `json:"target,omitempty" description:"Target payload, decoded by the policy's registered decoder"`
	Context   map[string]any  `json:"context,omitempty" description:"Session context values (actor, tenant, etc.)"`
}

// BatchAuthorizeRequest contains multiple checks.
type BatchAuthorizeRequest struct {
	Checks []AuthorizeRequest `json:"checks" description:"List of authorization checks"`
}

// PermissionSetRequest is the request body for a permission set lookup.
type PermissionSetRequest struct {
	Policy    string          `json:"policy" description:"Registered policy name"`
	Rules     []string        `json:"rules" description:"Rules to evaluate"`
	Namespace string          `json:"namespace,omitempty" description:"Policy namespace"`
	Target    json.RawMessage `json:"target,omitempty" description:"Target payload, decoded by the policy's registered decoder"`
	Context   map[string]any  `json:"context,omitempty" description:"Session context values"`
}

// GetDecisionRequest is the path parameter for getting a decision entry.
type GetDecisionRequest struct {
	DecisionID string `path:"decisionId" description:"Decision ID"`
}

// ListDecisionsRequest holds query parameters for listing decision entries.
type ListDecisionsRequest struct {
	Policy     string `query:"policy" description:"Filter by policy name"`
	Rule       string `query:"rule" description:"Filter by rule name"`
	Namespace  string `query:"namespace" description:"Filter by namespace"`
	TargetType string `query:"target_type" description:"Filter by target type"`
	Value      string `query:"value" description:"Filter by outcome (true or false)"`
	After      string `query:"after" description:"Entries created after this RFC3339 timestamp"`
	Before     string `query:"before" description:"Entries created before this RFC3339 timestamp"`
	Limit      int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset     int    `query:"offset" description:"Results to skip"`
}

// PurgeDecisionsRequest holds query parameters for purging decision entries.
type PurgeDecisionsRequest struct {
	Before string `query:"before" description:"Delete entries older than this RFC3339 timestamp"`
}
