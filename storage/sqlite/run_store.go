package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hupe1980/agentcore/core"
)

var _ core.RunStore = (*RunStore)(nil)

// RunStore is the core.RunStore view of a Storage.
type RunStore struct {
	s *Storage
}

// Runs returns the run report store backed by this database.
func (s *Storage) Runs() *RunStore { return &RunStore{s: s} }

func (r *RunStore) db(ctx context.Context) (*gorm.DB, error) {
	if r == nil || r.s == nil || r.s.db == nil {
		return nil, errNotInitialized
	}
	return r.s.db.WithContext(ctx), nil
}

// Save stores report, replacing any report with the same run id.
func (r *RunStore) Save(ctx context.Context, report *core.RunReport) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}
	if report == nil || report.RunID == "" {
		return errors.New("save run report: missing run id")
	}
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode run report %s: %w", report.RunID, err)
	}
	rec := RunRecord{
		RunID:      report.RunID,
		Agent:      report.Agent,
		Goal:       report.Goal,
		Steps:      report.Steps,
		ReportJSON: string(data),
		StartedAt:  report.StartedAt.UTC(),
		FinishedAt: report.FinishedAt.UTC(),
	}
	if err := db.Save(&rec).Error; err != nil {
		return fmt.Errorf("save run report %s: %w", report.RunID, err)
	}
	return nil
}

// Get returns the run report stored under runID or core.ErrReportNotFound.
func (r *RunStore) Get(ctx context.Context, runID string) (*core.RunReport, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	var rec RunRecord
	err = db.Where("run_id = ?", runID).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", core.ErrReportNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run report %s: %w", runID, err)
	}
	return decodeReport(rec)
}

// List returns reports newest first. An empty agent matches all agents; a
// non-positive limit returns everything.
func (r *RunStore) List(ctx context.Context, agent string, limit int) ([]*core.RunReport, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	db = db.Model(&RunRecord{})
	if agent != "" {
		db = db.Where("agent = ?", agent)
	}
	db = db.Order("started_at DESC").Order("run_id DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	var recs []RunRecord
	if err := db.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list run reports: %w", err)
	}
	out := make([]*core.RunReport, 0, len(recs))
	for _, rec := range recs {
		report, err := decodeReport(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	return out, nil
}

func decodeReport(rec RunRecord) (*core.RunReport, error) {
	var r core.RunReport
	if err := json.Unmarshal([]byte(rec.ReportJSON), &r); err != nil {
		return nil, fmt.Errorf("decode run report %s: %w", rec.RunID, err)
	}
	return &r, nil
}
