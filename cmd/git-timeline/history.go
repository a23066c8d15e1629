package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/storage"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/timeline"
)

var (
	historyLimit  int
	historyAll    bool
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history [path]",
	Short: "List saved analysis runs",
	Long: `History lists runs saved with "analyze --save" or by the MCP server,
newest first. Without --all only runs of the given (or current) repository
are shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the events of a saved run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs")
	historyCmd.Flags().BoolVar(&historyAll, "all", false, "list runs of every repository")
	historyCmd.PersistentFlags().StringVarP(&historyFormat, "format", "f", "", "output format: text, json or yaml")
	historyCmd.AddCommand(historyShowCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	repo := ""
	if !historyAll {
		path := cfg.Repo.Path
		if len(args) > 0 {
			path = args[0]
		}
		if repo, err = timeline.RepositoryRoot(cmd.Context(), path); err != nil {
			return fmt.Errorf("resolve path: %w", err)
		}
	}

	runs, err := store.ListRuns(cmd.Context(), repo, historyLimit)
	if err != nil {
		return err
	}

	format := resolveFormat(historyFormat)
	if format != formatText {
		return render(os.Stdout, format, runs)
	}

	if len(runs) == 0 {
		fmt.Println("No saved runs.")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  %s  commits=%d features=%d tooling=%d\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Repository,
			r.Commits, r.FeatureCount, r.ToolingCount)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	run, err := store.GetRun(cmd.Context(), args[0])
	if err != nil {
		if err == storage.ErrNotFound {
			return fmt.Errorf("no run with id %s", args[0])
		}
		return err
	}

	format := resolveFormat(historyFormat)
	if format != formatText {
		return render(os.Stdout, format, run)
	}

	return render(os.Stdout, formatText, &timeline.Result{
		Repository: run.Repository,
		Features:   run.Features,
		Tooling:    run.Tooling,
		Stats:      run.Stats,
	})
}
