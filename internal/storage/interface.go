package storage

import (
	"context"
	"errors"
	"time"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/timeline"
)

// Common errors
var (
	ErrNotFound = errors.New("not found")
	ErrDisabled = errors.New("storage disabled")
)

// Run is one persisted analysis
type Run struct {
	ID         string           `json:"id" yaml:"id"`
	Repository string           `json:"repository" yaml:"repository"`
	CreatedAt  time.Time        `json:"created_at" yaml:"created_at"`
	Features   []timeline.Event `json:"features" yaml:"features"`
	Tooling    []timeline.Event `json:"tooling" yaml:"tooling"`
	Stats      timeline.Stats   `json:"stats" yaml:"stats"`
}

// RunSummary is a listing row without events
type RunSummary struct {
	ID           string    `json:"id" yaml:"id"`
	Repository   string    `json:"repository" yaml:"repository"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	FeatureCount int       `json:"feature_count" yaml:"feature_count"`
	ToolingCount int       `json:"tooling_count" yaml:"tooling_count"`
	Commits      int       `json:"commits" yaml:"commits"`
}

// NewRun wraps an analysis result for persistence
func NewRun(result *timeline.Result) *Run {
	return &Run{
		Repository: result.Repository,
		Features:   result.Features,
		Tooling:    result.Tooling,
		Stats:      result.Stats,
	}
}

// Store defines the run history interface
type Store interface {
	// SaveRun assigns ID and CreatedAt when unset
	SaveRun(ctx context.Context, run *Run) error
	// ListRuns returns the newest runs first; an empty repository lists all
	ListRuns(ctx context.Context, repository string, limit int) ([]RunSummary, error)
	GetRun(ctx context.Context, id string) (*Run, error)

	// Close connection
	Close() error
}
