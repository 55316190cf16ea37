package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/xraph/forge"

	"github.com/xraph/verdict/decisionlog"
	"github.com/xraph/verdict/id"
)

func (a *API) registerDecisionRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("decisions"))

	if err := g.GET("/decisions", a.listDecisions,
		forge.WithSummary("Query decision log"),
		forge.WithDescription("Returns recorded authorization decisions with optional filters."),
		forge.WithOperationID("listDecisions"),
		forge.WithRequestSchema(ListDecisionsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Decision list", []*decisionlog.Entry{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/decisions/:decisionId", a.getDecision,
		forge.WithSummary("Get decision"),
		forge.WithDescription("Returns a single decision log entry by ID."),
		forge.WithOperationID("getDecision"),
		forge.WithRequestSchema(GetDecisionRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Decision entry", decisionlog.Entry{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.DELETE("/decisions", a.purgeDecisions,
		forge.WithSummary("Purge decision log"),
		forge.WithDescription("Removes decision entries older than the given timestamp."),
		forge.WithOperationID("purgeDecisions"),
		forge.WithRequestSchema(PurgeDecisionsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Purge result", PurgeDecisionsResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) listDecisions(ctx forge.Context, req *ListDecisionsRequest) ([]*decisionlog.Entry, error) {
	if a.eng.Store() == nil {
		return nil, forge.BadRequest("no decision store configured")
	}

	filter := &decisionlog.QueryFilter{
		Policy:     req.Policy,
		Rule:       req.Rule,
		Namespace:  req.Namespace,
		TargetType: req.TargetType,
		Limit:      defaultLimit(req.Limit),
		Offset:     req.Offset,
	}

	if req.Value != "" {
		v, err := strconv.ParseBool(req.Value)
		if err != nil {
			return nil, forge.BadRequest("invalid value filter")
		}
		filter.Value = &v
	}
	if req.After != "" {
		t, err := time.Parse(time.RFC3339, req.After)
		if err != nil {
			return nil, forge.BadRequest("invalid after timestamp")
		}
		filter.After = &t
	}
	if req.Before != "" {
		t, err := time.Parse(time.RFC3339, req.Before)
		if err != nil {
			return nil, forge.BadRequest("invalid before timestamp")
		}
		filter.Before = &t
	}

	entries, err := a.eng.Store().ListDecisions(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return entries, ctx.JSON(http.StatusOK, entries)
}

func (a *API) getDecision(ctx forge.Context, req *GetDecisionRequest) (*decisionlog.Entry, error) {
	if a.eng.Store() == nil {
		return nil, forge.BadRequest("no decision store configured")
	}

	decID, err := id.ParseDecisionID(req.DecisionID)
	if err != nil {
		return nil, forge.BadRequest("invalid decision ID")
	}

	entry, err := a.eng.Store().GetDecision(ctx.Context(), decID)
	if err != nil {
		return nil, mapError(err)
	}

	return entry, ctx.JSON(http.StatusOK, entry)
}

func (a *API) purgeDecisions(ctx forge.Context, req *PurgeDecisionsRequest) (*PurgeDecisionsResponse, error) {
	if a.eng.Store() == nil {
		return nil, forge.BadRequest("no decision store configured")
	}
	if req.Before == "" {
		return nil, forge.BadRequest("before is required")
	}

	before, err := time.Parse(time.RFC3339, req.Before)
	if err != nil {
		return nil, forge.BadRequest("invalid before timestamp")
	}

	purged, err := a.eng.Store().PurgeDecisions(ctx.Context(), before)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &PurgeDecisionsResponse{Purged: purged}
	return resp, ctx.JSON(http.StatusOK, resp)
}
