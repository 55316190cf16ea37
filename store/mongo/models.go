package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/verdict/decisionlog"
	"github.com/xraph/verdict/id"
)

type decisionModel struct {
	grove.BaseModel `grove:"table:verdict_decisions"`
	ID              string              `grove:"id,pk"        bson:"_id"`
	Policy          string              `grove:"policy"       bson:"policy"`
	Rule            string              `grove:"rule"         bson:"rule"`
	Namespace       string              `grove:"namespace"    bson:"namespace"`
	Value           bool                `grove:"value"        bson:"value"`
	Actor           string              `grove:"actor"        bson:"actor,omitempty"`
	TargetType      string              `grove:"target_type"  bson:"target_type"`
	Reasons         map[string][]string `grove:"reasons"      bson:"reasons,omitempty"`
	EvalTimeNs      int64               `grove:"eval_time_ns" bson:"eval_time_ns"`
	CreatedAt       time.Time           `grove:"created_at"   bson:"created_at"`
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
