package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/verdict/decisionlog"
	"github.com/xraph/verdict/id"
)

type decisionModel struct {
	grove.BaseModel `grove:"table:verdict_decisions"`
	ID              string              `grove:"id,pk"`
	Policy          string              `grove:"policy,notnull"`
	Rule            string              `grove:"rule,notnull"`
	Namespace       string              `grove:"namespace"`
	Value           bool                `grove:"value,notnull"`
	Actor           string              `grove:"actor"`
	TargetType      string              `grove:"target_type"`
	Reasons         map[string][]string `grove:"reasons,type:jsonb"`
	EvalTimeNs      int64               `grove:"eval_time_ns,notnull"`
	CreatedAt       time.Time           `grove:"created_at,notnull"`
}

func decisionToModel(e *decisionlog.Entry) *decisionModel {
	return &decisionModel{
		ID:         e.ID.String(),
		Policy:     e.Policy,
		Rule:       e.Rule,
		Namespace:  e.Namespace,
		Value:      e.Value,
		Actor:      e.Actor,
		TargetType: e.TargetType,
		Reasons:    e.Reasons,
		EvalTimeNs: e.EvalTimeNs,
		CreatedAt:  e.CreatedAt,
	}
}

func decisionFromModel(m *decisionModel) *decisionlog.Entry {
	decID, _ := id.ParseDecisionID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &decisionlog.Entry{
		ID:         decID,
		Policy:     m.Policy,
		Rule:       m.Rule,
		Namespace:  m.Namespace,
		Value:      m.Value,
		Actor:      m.Actor,
		TargetType: m.TargetType,
		Reasons:    m.Reasons,
		EvalTimeNs: m.EvalTimeNs,
		CreatedAt:  m.CreatedAt,
	}
}
