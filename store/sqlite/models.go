package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/verdict/decisionlog"
	"github.com/xraph/verdict/id"
)

type decisionModel struct {
	grove.BaseModel `grove:"table:verdict_decisions"`
	ID              string    `grove:"id,pk"`
	Policy          string    `grove:"policy,notnull"`
	Rule            string    `grove:"rule,notnull"`
	Namespace       string    `grove:"namespace"`
	Value           bool      `grove:"value,notnull"`
	Actor           string    `grove:"actor"`
	TargetType      string    `grove:"target_type"`
	Reasons         string    `grove:"reasons"` // JSON text
	EvalTimeNs      int64     `grove:"eval_time_ns,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func decisionToModel(e *decisionlog.Entry) (*decisionModel, error) {
	reasons := "{}"
	if e.Reasons != nil {
		data, err := json.Marshal(e.Reasons)
		if err != nil {
			return nil, fmt.Errorf("marshal decision reasons: %w", err)
		}
		reasons = string(data)
	}
	return &decisionModel{
		ID:         e.ID.String(),
		Policy:     e.Policy,
		Rule:       e.Rule,
		Namespace:  e.Namespace,
		Value:      e.Value,
		Actor:      e.Actor,
		TargetType: e.TargetType,
		Reasons:    reasons,
		EvalTimeNs: e.EvalTimeNs,
		CreatedAt:  e.CreatedAt,
	}, nil
}

func decisionFromModel(m *decisionModel) (*decisionlog.Entry, error) {
	decID, _ := id.ParseDecisionID(m.ID) //nolint:errcheck // stored IDs are always valid
	var reasons map[string][]string
	if m.Reasons != "" && m.Reasons != "{}" {
		if err := json.Unmarshal([]byte(m.Reasons), &reasons); err != nil {
			return nil, fmt.Errorf("unmarshal decision reasons: %w", err)
		}
	}
	return &decisionlog.Entry{
		ID:         decID,
		Policy:     m.Policy,
		Rule:       m.Rule,
		Namespace:  m.Namespace,
		Value:      m.Value,
		Actor:      m.Actor,
		TargetType: m.TargetType,
		Reasons:    reasons,
		EvalTimeNs: m.EvalTimeNs,
		CreatedAt:  m.CreatedAt,
	}, nil
}
