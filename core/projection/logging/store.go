// Package logging persists projection records and answers history queries.
// Records are kept as JSON lines (optionally rotated by lumberjack) or in a
// SQLite table.
package logging

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kilianp07/crewplan/core/model"
)

// LogRecord is the persisted form of a projection.
type LogRecord = model.Projection

// LogQuery defines filters for retrieving records. Plan matches case
// insensitively. Limit keeps only the most recent records.
type LogQuery struct {
	Start time.Time
	End   time.Time
	Plan  string
	Limit int
}

// Match reports whether rec passes the time window and plan filters.
func (q LogQuery) Match(rec LogRecord) bool {
	if !q.Start.IsZero() && rec.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && rec.Timestamp.After(q.End) {
		return false
	}
	if q.Plan != "" && !strings.EqualFold(rec.Plan, q.Plan) {
		return false
	}
	return true
}

// finish orders records by timestamp and applies the limit.
func (q LogQuery) finish(res []LogRecord) []LogRecord {
	sort.SliceStable(res, func(i, j int) bool { return res[i].Timestamp.Before(res[j].Timestamp) })
	if q.Limit > 0 && len(res) > q.Limit {
		res = res[len(res)-q.Limit:]
	}
	return res
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}

// Config defines settings for projection history storage and rotation.
type Config struct {
	// Backend selects the store type: "jsonl", "rotating" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		if c.Backend == "sqlite" {
			c.Path = "projections.db"
		} else {
			c.Path = "projections.jsonl"
		}
	}
	if c.Backend == "rotating" && c.MaxSizeMB <= 0 {
		c.MaxSizeMB = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	switch c.Backend {
	case "jsonl", "rotating", "sqlite":
	default:
		return fmt.Errorf("unknown store backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("store path is required")
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("store rotation limits must not be negative")
	}
	return nil
}

// Open creates the store selected by cfg.
func Open(cfg Config) (LogStore, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "rotating":
		return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return NewJSONLStore(cfg.Path)
	}
}
