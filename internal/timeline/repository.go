package timeline

import (
	"context"
	"path/filepath"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/config"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/enrich"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/git"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/tooling"
)

// AnalyzeRepository opens the working copy at root and runs a fresh
// analysis configured by cfg. describer may be nil.
func AnalyzeRepository(ctx context.Context, root string, cfg *config.Config, describer enrich.Describer) (*Result, error) {
	walker, err := git.Open(ctx, root, git.Options{DiffContext: cfg.Repo.DiffContext})
	if err != nil {
		return nil, err
	}

	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	if describer != nil {
		opts.Namer = tooling.NewNamer(tooling.WithDescriber(describer, cfg.Enrich.Timeout))
	}

	return Analyze(ctx, walker, opts)
}

// RepositoryRoot maps path to the key runs are stored under: git's
// top-level directory when path is inside a working copy, otherwise the
// absolute path with symlinks resolved.
func RepositoryRoot(ctx context.Context, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if walker, err := git.Open(ctx, abs, git.Options{}); err == nil {
		return walker.Root(), nil
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}
