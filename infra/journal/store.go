// Package journal keeps a history of inference runs so past submissions can
// be traced back to the split, model and dataset that produced them.
package journal

import (
	"context"
	"fmt"
	"time"
)

// RunRecord captures one inference run.
type RunRecord struct {
	RunID       string    `json:"run_id"`
	Timestamp   time.Time `json:"timestamp"`
	Submission  string    `json:"submission"`
	Version     string    `json:"version"`
	Split       string    `json:"split"`
	ConfigName  string    `json:"config_name"`
	Model       string    `json:"model"`
	Weights     string    `json:"weights"`
	OutputPath  string    `json:"output_path"`
	Tokens      int       `json:"tokens"`
	Predictions int       `json:"predictions"`
	DurationMs  int64     `json:"duration_ms"`
	Error       string    `json:"error,omitempty"`
}

// RunQuery defines filters for retrieving records.
type RunQuery struct {
	Start      time.Time
	End        time.Time
	Submission string
}

func (q RunQuery) match(r RunRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	return q.Submission == "" || r.Submission == q.Submission
}

// Store persists RunRecords and supports querying.
type Store interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q RunQuery) ([]RunRecord, error)
	Close() error
}

// Config selects and configures the journal backend.
type Config struct {
	Enabled bool `json:"enabled"`
	// Backend selects the store type: "jsonl" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation of the jsonl file when it exceeds this size.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated jsonl files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated jsonl files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		if c.Backend == "sqlite" {
			c.Path = "predsubmit-runs.db"
		} else {
			c.Path = "predsubmit-runs.jsonl"
		}
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Backend != "jsonl" && c.Backend != "sqlite" {
		return fmt.Errorf("unknown journal backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("journal path is required")
	}
	return nil
}
