package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/enrich"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/errors"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/storage"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/timeline"
)

var (
	analyzeMaxCommits int
	analyzeManifest   string
	analyzeTimezone   string
	analyzeFormat     string
	analyzeStream     string
	analyzeSave       bool
	analyzeEnrich     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Build the feature and tooling timeline of a repository",
	Long: `Analyze walks the most recent commits of a git working copy and prints
two date-ordered event streams: business features inferred from changed
source paths, and tooling/dependencies adopted for the first time.

Examples:
  git-timeline analyze
  git-timeline analyze ../shop --max-commits 500 --format yaml
  git-timeline analyze --stream tooling --enrich`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVarP(&analyzeMaxCommits, "max-commits", "n", 0, "number of recent commits to walk (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeManifest, "manifest", "", "dependency manifest file name (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeTimezone, "timezone", "", "IANA timezone used to bucket commits by day")
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "", "output format: text, json or yaml (default text on a terminal, json otherwise)")
	analyzeCmd.Flags().StringVar(&analyzeStream, "stream", "all", "which stream to print: all, features or tooling")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "persist the run to the configured history store")
	analyzeCmd.Flags().BoolVar(&analyzeEnrich, "enrich", false, "append registry descriptions to tooling events")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := cfg.Repo.Path
	if len(args) > 0 {
		path = args[0]
	}
	root, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if analyzeMaxCommits > 0 {
		cfg.Repo.MaxCommits = analyzeMaxCommits
	}
	if analyzeManifest != "" {
		cfg.Repo.Manifest = analyzeManifest
	}
	if analyzeTimezone != "" {
		cfg.Repo.Timezone = analyzeTimezone
	}
	if analyzeEnrich {
		cfg.Enrich.Enabled = true
	}

	if result := cfg.Validate(); result.HasErrors() {
		return result
	}

	var describer enrich.Describer
	if cfg.Enrich.Enabled {
		client, closeCache, err := enrich.FromConfig(cfg.Enrich)
		if err != nil {
			logger.WithError(err).Warn("Description lookups disabled")
		} else {
			defer closeCache()
			describer = client
		}
	}

	logger.WithField("repo", root).Debug("Analyzing repository")

	result, err := timeline.AnalyzeRepository(cmd.Context(), root, cfg, describer)
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeRepository) {
			return fmt.Errorf("%s is not a usable git repository: %w", root, err)
		}
		return err
	}

	logger.WithFields(map[string]interface{}{
		"commits":      result.Stats.Commits,
		"query_errors": result.Stats.QueryErrors,
		"parse_errors": result.Stats.ParseErrors,
		"phase_errors": result.Stats.PhaseErrors,
	}).Debug("Analysis finished")

	if analyzeSave {
		if err := saveRun(cmd, result); err != nil {
			logger.WithError(err).Warn("Run not saved")
		}
	}

	switch analyzeStream {
	case "all":
	case "features":
		result.Tooling = nil
	case "tooling":
		result.Features = nil
	default:
		return fmt.Errorf("unknown stream %q (want all, features or tooling)", analyzeStream)
	}

	return render(os.Stdout, resolveFormat(analyzeFormat), result)
}

func saveRun(cmd *cobra.Command, result *timeline.Result) error {
	store, err := storage.Open(cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	run := storage.NewRun(result)
	if err := store.SaveRun(cmd.Context(), run); err != nil {
		return err
	}
	logger.WithField("run_id", run.ID).Info("Saved run")
	return nil
}
