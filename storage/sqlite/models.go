package sqlite

import "time"

// MemoryRecord is one key/value pair of the memory tool. Values are stored as
// JSON so any JSON-encodable value round-trips (numbers decode as float64).
type MemoryRecord struct {
	ID        uint64    `gorm:"primaryKey"`
	Namespace string    `gorm:"size:255;not null;uniqueIndex:idx_memory_ns_key,priority:1"`
	Key       string    `gorm:"column:mem_key;size:255;not null;uniqueIndex:idx_memory_ns_key,priority:2"`
	ValueJSON string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}

// RunRecord stores a finished run report. The full report is kept as JSON;
// the indexed columns serve listing queries.
type RunRecord struct {
	RunID      string    `gorm:"primaryKey;size:64"`
	Agent      string    `gorm:"size:255;not null;index"`
	Goal       string    `gorm:"type:text;not null"`
	Steps      int       `gorm:"not null"`
	ReportJSON string    `gorm:"type:text;not null"`
	StartedAt  time.Time `gorm:"index"`
	FinishedAt time.Time `gorm:"index"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime"`
}
