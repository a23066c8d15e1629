package server

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/config"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/enrich"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/logging"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/storage"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/timeline"
)

// AnalyzeInput is the analyze_timeline argument object
type AnalyzeInput struct {
	RepoPath   string `json:"repo_path,omitempty" jsonschema:"path of the git working copy to analyze; defaults to the configured repository"`
	MaxCommits int    `json:"max_commits,omitempty" jsonschema:"number of most recent commits to walk"`
}

// AnalyzeOutput carries both event streams
type AnalyzeOutput struct {
	RunID      string           `json:"run_id,omitempty"`
	Repository string           `json:"repository"`
	Features   []timeline.Event `json:"features"`
	Tooling    []timeline.Event `json:"tooling"`
	Stats      timeline.Stats   `json:"stats"`
}

// AnalyzeTimelineTool implements analyze_timeline
type AnalyzeTimelineTool struct {
	cfg       *config.Config
	describer enrich.Describer
	store     storage.Store
	logger    *slog.Logger
}

// NewAnalyzeTimelineTool creates the tool; describer and store may be nil
func NewAnalyzeTimelineTool(cfg *config.Config, describer enrich.Describer, store storage.Store) *AnalyzeTimelineTool {
	return &AnalyzeTimelineTool{
		cfg:       cfg,
		describer: describer,
		store:     store,
		logger:    logging.Component("server"),
	}
}

// Execute analyzes the repository and persists the run when a store is set
func (t *AnalyzeTimelineTool) Execute(ctx context.Context, in AnalyzeInput) (AnalyzeOutput, error) {
	cfg := *t.cfg
	if in.RepoPath != "" {
		cfg.Repo.Path = in.RepoPath
	}
	if in.MaxCommits < 0 {
		return AnalyzeOutput{}, fmt.Errorf("max_commits must be positive")
	}
	if in.MaxCommits > 0 {
		cfg.Repo.MaxCommits = in.MaxCommits
	}

	root, err := filepath.Abs(cfg.Repo.Path)
	if err != nil {
		return AnalyzeOutput{}, fmt.Errorf("resolve repo_path: %w", err)
	}

	result, err := timeline.AnalyzeRepository(ctx, root, &cfg, t.describer)
	if err != nil {
		return AnalyzeOutput{}, err
	}

	out := AnalyzeOutput{
		Repository: result.Repository,
		Features:   nonNil(result.Features),
		Tooling:    nonNil(result.Tooling),
		Stats:      result.Stats,
	}

	if t.store != nil {
		run := storage.NewRun(result)
		if err := t.store.SaveRun(ctx, run); err != nil {
			t.logger.Warn("run not saved", "repository", result.Repository, "error", err)
		} else {
			out.RunID = run.ID
		}
	}

	return out, nil
}

// DescribeInput is the describe_dependency argument object
type DescribeInput struct {
	Name string `json:"name" jsonschema:"package name as declared in the manifest"`
}

// DescribeOutput is a single package description
type DescribeOutput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DescribeDependencyTool implements describe_dependency
type DescribeDependencyTool struct {
	describer enrich.Describer
}

// NewDescribeDependencyTool creates the tool
func NewDescribeDependencyTool(describer enrich.Describer) *DescribeDependencyTool {
	return &DescribeDependencyTool{describer: describer}
}

// Execute looks up the description
func (t *DescribeDependencyTool) Execute(ctx context.Context, in DescribeInput) (DescribeOutput, error) {
	if in.Name == "" {
		return DescribeOutput{}, fmt.Errorf("name is required")
	}
	d, err := t.describer.Describe(ctx, in.Name)
	if err != nil {
		return DescribeOutput{}, err
	}
	return DescribeOutput{Name: in.Name, Description: d}, nil
}

// HistoryInput is the list_runs argument object
type HistoryInput struct {
	RepoPath string `json:"repo_path,omitempty" jsonschema:"only list runs of this repository"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of runs to return"`
}

// RunEntry is one stored run as reported by list_runs
type RunEntry struct {
	ID           string `json:"id"`
	Repository   string `json:"repository"`
	CreatedAt    string `json:"created_at"` // RFC 3339
	Commits      int    `json:"commits"`
	FeatureCount int    `json:"feature_count"`
	ToolingCount int    `json:"tooling_count"`
}

// HistoryOutput lists stored runs, newest first
type HistoryOutput struct {
	Runs []RunEntry `json:"runs"`
}

// ListRunsTool implements list_runs
type ListRunsTool struct {
	store storage.Store
}

// NewListRunsTool creates the tool
func NewListRunsTool(store storage.Store) *ListRunsTool {
	return &ListRunsTool{store: store}
}

// Execute lists runs
func (t *ListRunsTool) Execute(ctx context.Context, in HistoryInput) (HistoryOutput, error) {
	repo := in.RepoPath
	if repo != "" {
		// stored runs carry git's top-level path
		root, err := timeline.RepositoryRoot(ctx, repo)
		if err != nil {
			return HistoryOutput{}, fmt.Errorf("resolve repo_path: %w", err)
		}
		repo = root
	}
	runs, err := t.store.ListRuns(ctx, repo, in.Limit)
	if err != nil {
		return HistoryOutput{}, err
	}
	out := HistoryOutput{Runs: make([]RunEntry, 0, len(runs))}
	for _, r := range runs {
		out.Runs = append(out.Runs, RunEntry{
			ID:           r.ID,
			Repository:   r.Repository,
			CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
			Commits:      r.Commits,
			FeatureCount: r.FeatureCount,
			ToolingCount: r.ToolingCount,
		})
	}
	return out, nil
}

func nonNil(events []timeline.Event) []timeline.Event {
	if events == nil {
		return []timeline.Event{}
	}
	return events
}
