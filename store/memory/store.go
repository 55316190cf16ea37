// Package memory provides an in-memory implementation of the verdict
// store. It is intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/xraph/verdict/decisionlog"
	"github.com/xraph/verdict/id"
	"github.com/xraph/verdict/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// errNotFound is the sentinel for missing entities.
var errNotFound = decisionlog.ErrNotFound

// Store is a thread-safe in-memory decision log store.
type Store struct {
	mu        sync.RWMutex
	decisions map[string]*decisionlog.Entry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{decisions: make(map[string]*decisionlog.Entry)}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

func (s *Store) CreateDecision(_ context.Context, e *decisionlog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.decisions[e.ID.String()] = copyEntry(e)
	return nil
}

func (s *Store) GetDecision(_ context.Context, decID id.DecisionID) (*decisionlog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.decisions[decID.String()]
	if !ok {
		return nil, fmt.Errorf("decision %s: %w", decID, errNotFound)
	}
	return copyEntry(e), nil
}

func (s *Store) ListDecisions(_ context.Context, filter *decisionlog.QueryFilter) ([]*decisionlog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*decisionlog.Entry
	for _, e := range s.decisions {
		if matches(e, filter) {
			matched = append(matched, copyEntry(e))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter != nil {
		if filter.Offset > 0 {
			if filter.Offset >= len(matched) {
				return nil, nil
			}
			matched = matched[filter.Offset:]
		}
		if filter.Limit > 0 && filter.Limit < len(matched) {
			matched = matched[:filter.Limit]
		}
	}
	return matched, nil
}

func (s *Store) CountDecisions(_ context.Context, filter *decisionlog.QueryFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, e := range s.decisions {
		if matches(e, filter) {
			n++
		}
	}
	return n, nil
}

func (s *Store) PurgeDecisions(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, e := range s.decisions {
		if e.CreatedAt.Before(before) {
			delete(s.decisions, k)
			n++
		}
	}
	return n, nil
}

// matches ignores Limit and Offset; those apply after filtering.
func matches(e *decisionlog.Entry, f *decisionlog.QueryFilter) bool {
	if f == nil {
		return true
	}
	if f.Policy != "" && e.Policy != f.Policy {
		return false
	}
	if f.Rule != "" && e.Rule != f.Rule {
		return false
	}
	if f.Namespace != "" && e.Namespace != f.Namespace {
		return false
	}
	if f.TargetType != "" && e.TargetType != f.TargetType {
		return false
	}
	if f.Value != nil && e.Value != *f.Value {
		return false
	}
	if f.After != nil && e.CreatedAt.Before(*f.After) {
		return false
	}
	if f.Before != nil && e.CreatedAt.After(*f.Before) {
		return false
	}
	return true
}

func copyEntry(e *decisionlog.Entry) *decisionlog.Entry {
	out := *e
	if e.Reasons != nil {
		out.Reasons = make(map[string][]string, len(e.Reasons))
		for policy, rules := range e.Reasons {
			out.Reasons[policy] = append([]string(nil), rules...)
		}
	}
	return &out
}
