package runstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/agentcore/core"
)

// InMemoryStore is a volatile core.RunStore implementation storing reports in
// a process local map. It is safe for concurrent access and best suited for
// tests or the CLI's single-process mode. Reports are cloned on the way in and
// out to prevent external mutation of internal state.
type InMemoryStore struct {
	mu      sync.RWMutex
	reports map[string]*core.RunReport
}

// NewInMemoryStore constructs an empty in-memory run store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{reports: make(map[string]*core.RunReport)}
}

// Save stores a clone of the report, replacing any report with the same run id.
func (s *InMemoryStore) Save(ctx context.Context, report *core.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if report == nil || report.RunID == "" {
		return fmt.Errorf("save run report: missing run id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.RunID] = report.Clone()
	return nil
}

// Get returns a clone of the report stored under runID or core.ErrReportNotFound.
func (s *InMemoryStore) Get(ctx context.Context, runID string) (*core.RunReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrReportNotFound, runID)
	}
	return r.Clone(), nil
}

// List returns reports newest first. An empty agent matches all agents; a
// non-positive limit returns everything.
func (s *InMemoryStore) List(ctx context.Context, agent string, limit int) ([]*core.RunReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]*core.RunReport, 0, len(s.reports))
	for _, r := range s.reports {
		if agent == "" || r.Agent == agent {
			out = append(out, r.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].RunID > out[j].RunID
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
