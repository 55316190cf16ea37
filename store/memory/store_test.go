package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/verdict/decisionlog"
	"github.com/xraph/verdict/id"
)

func newEntry(policy, rule string, value bool) *decisionlog.Entry {
	return &decisionlog.Entry{
		ID:     id.NewDecisionID(),
		Policy: policy,
		Rule:   rule,
		Value:  value,
	}
}

func TestCreateGetDecision(t *testing.T) {
	ctx := context.Background()
	s := New()

	e := newEntry("post", "edit?", false)
	e.Reasons = map[string][]string{"post": {"edit?"}}
	if err := s.CreateDecision(ctx, e); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetDecision(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Policy != "post" || got.Rule != "edit?" || got.Value {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}

	// Mutating the returned copy must not affect the stored entry.
	got.Reasons["post"][0] = "mutated"
	again, err := s.GetDecision(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if again.Reasons["post"][0] != "edit?" {
		t.Fatal("stored entry was mutated through a returned copy")
	}
}

func TestGetDecisionNotFound(t *testing.T) {
	s := New()
	_, err := s.GetDecision(context.Background(), id.NewDecisionID())
	if !errors.Is(err, decisionlog.ErrNotFound) {
		t.Fatalf("expected decisionlog.ErrNotFound, got %v", err)
	}
}

func TestListDecisionsFilters(t *testing.T) {
	ctx := context.Background()
	s := New()

	_ = s.CreateDecision(ctx, newEntry("post", "edit?", false))
	_ = s.CreateDecision(ctx, newEntry("post", "show?", true))
	_ = s.CreateDecision(ctx, newEntry("comment", "edit?", true))

	got, err := s.ListDecisions(ctx, &decisionlog.QueryFilter{Policy: "post"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 post decisions, got %d", len(got))
	}

	denied := false
	got, err = s.ListDecisions(ctx, &decisionlog.QueryFilter{Value: &denied})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Rule != "edit?" {
		t.Fatalf("expected the single denied edit? decision, got %+v", got)
	}

	got, err = s.ListDecisions(ctx, &decisionlog.QueryFilter{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected limit 1, got %d", len(got))
	}
}

func TestCountDecisions(t *testing.T) {
	ctx := context.Background()
	s := New()

	_ = s.CreateDecision(ctx, newEntry("post", "edit?", false))
	_ = s.CreateDecision(ctx, newEntry("post", "edit?", true))

	n, err := s.CountDecisions(ctx, &decisionlog.QueryFilter{Policy: "post"})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected count 2, got %d", n)
	}
}

func TestPurgeDecisions(t *testing.T) {
	ctx := context.Background()
	s := New()

	old := newEntry("post", "edit?", false)
	old.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
	_ = s.CreateDecision(ctx, old)
	_ = s.CreateDecision(ctx, newEntry("post", "edit?", true))

	n, err := s.PurgeDecisions(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 purged, got %d", n)
	}
	remaining, _ := s.CountDecisions(ctx, nil)
	if remaining != 1 {
		t.Fatalf("expected 1 remaining, got %d", remaining)
	}
}
