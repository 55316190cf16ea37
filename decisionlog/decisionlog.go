// Package decisionlog defines the authorization decision audit Entry.
package decisionlog

import (
	"time"

	"github.com/xraph/verdict/id"
)

// Entry is a single recorded authorization decision.
type Entry struct {
	ID         id.DecisionID       `json:"id" db:"id"`
	Policy     string              `json:"policy" db:"policy"`
	Rule       string              `json:"rule" db:"rule"`
	Namespace  string              `json:"namespace,omitempty" db:"namespace"`
	Value      bool                `json:"value" db:"value"`
	Actor      string              `json:"actor,omitempty" db:"actor"`
	TargetType string              `json:"target_type,omitempty" db:"target_type"`
	Reasons    map[string][]string `json:"reasons,omitempty" db:"-"`
	EvalTimeNs int64               `json:"eval_time_ns" db:"eval_time_ns"`
	CreatedAt  time.Time           `json:"created_at" db:"created_at"`
}

// QueryFilter contains filters for querying decision log entries.
type QueryFilter struct {
	Policy     string     `json:"policy,omitempty"`
	Rule       string     `json:"rule,omitempty"`
	Namespace  string     `json:"namespace,omitempty"`
	TargetType string     `json:"target_type,omitempty"`
	Value      *bool      `json:"value,omitempty"`
	After      *time.Time `json:"after,omitempty"`
	Before     *time.Time `json:"before,omitempty"`
	Limit      int        `json:"limit,omitempty"`
	Offset     int        `json:"offset,omitempty"`
}
