package core

import (
	"context"
	"errors"
)

// ErrReportNotFound is returned by RunStore.Get for unknown run ids.
var ErrReportNotFound = errors.New("run report not found")

// MemoryStore is the key/value backend of the memory tool. Keys are scoped
// by namespace so one store can serve several agents (or runs) without
// collisions. Get reports a missing key through the boolean, not an error.
type MemoryStore interface {
	Get(ctx context.Context, namespace, key string) (any, bool, error)
	Put(ctx context.Context, namespace, key string, value any) error
	Delete(ctx context.Context, namespace, key string) error
	Keys(ctx context.Context, namespace string) ([]string, error)
}

// RunStore persists finished run reports. List returns reports newest
// first; an empty agent matches every agent and a non-positive limit
// returns all reports.
type RunStore interface {
	Save(ctx context.Context, report *RunReport) error
	Get(ctx context.Context, runID string) (*RunReport, error)
	List(ctx context.Context, agent string, limit int) ([]*RunReport, error)
}
