package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hupe1980/agentcore/core"
)

var _ core.MemoryStore = (*MemoryStore)(nil)

// MemoryStore is the core.MemoryStore view of a Storage.
type MemoryStore struct {
	s *Storage
}

// Memory returns the memory tool backend backed by this database.
func (s *Storage) Memory() *MemoryStore { return &MemoryStore{s: s} }

func (m *MemoryStore) db(ctx context.Context) (*gorm.DB, error) {
	if m == nil || m.s == nil || m.s.db == nil {
		return nil, errNotInitialized
	}
	return m.s.db.WithContext(ctx), nil
}

// Get returns the value stored under key in namespace.
func (m *MemoryStore) Get(ctx context.Context, namespace, key string) (any, bool, error) {
	db, err := m.db(ctx)
	if err != nil {
		return nil, false, err
	}
	var rec MemoryRecord
	err = db.
		Where("namespace = ? AND mem_key = ?", namespace, key).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get memory %s/%s: %w", namespace, key, err)
	}
	var v any
	if err := json.Unmarshal([]byte(rec.ValueJSON), &v); err != nil {
		return nil, false, fmt.Errorf("decode memory %s/%s: %w", namespace, key, err)
	}
	return v, true, nil
}

// Put upserts value under key.
func (m *MemoryStore) Put(ctx context.Context, namespace, key string, value any) error {
	db, err := m.db(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode memory %s/%s: %w", namespace, key, err)
	}
	rec := MemoryRecord{Namespace: namespace, Key: key, ValueJSON: string(data), UpdatedAt: time.Now().UTC()}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "mem_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value_json", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("put memory %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Delete removes key from namespace. Deleting a missing key is a no-op.
func (m *MemoryStore) Delete(ctx context.Context, namespace, key string) error {
	db, err := m.db(ctx)
	if err != nil {
		return err
	}
	err = db.
		Where("namespace = ? AND mem_key = ?", namespace, key).
		Delete(&MemoryRecord{}).Error
	if err != nil {
		return fmt.Errorf("delete memory %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Keys returns the keys of namespace in sorted order.
func (m *MemoryStore) Keys(ctx context.Context, namespace string) ([]string, error) {
	db, err := m.db(ctx)
	if err != nil {
		return nil, err
	}
	var keys []string
	err = db.Model(&MemoryRecord{}).
		Where("namespace = ?", namespace).
		Order("mem_key ASC").
		Pluck("mem_key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("list memory keys %s: %w", namespace, err)
	}
	return keys, nil
}
