package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/enrich"
)

var describeWorkers int

var describeCmd = &cobra.Command{
	Use:   "describe <package>...",
	Short: "Look up package descriptions and warm the description cache",
	Long: `Describe fetches registry descriptions for the given packages using the
configured rate limit, storing them in the local cache that "analyze
--enrich" reads from.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDescribe,
}

func init() {
	describeCmd.Flags().IntVarP(&describeWorkers, "workers", "w", 0, "concurrent lookups (default from config)")
}

func runDescribe(cmd *cobra.Command, args []string) error {
	client, closeCache, err := enrich.FromConfig(cfg.Enrich)
	if err != nil {
		return err
	}
	defer closeCache()

	workers := cfg.Enrich.Workers
	if describeWorkers > 0 {
		workers = describeWorkers
	}

	described, failed, err := enrich.Prefetch(cmd.Context(), client, args, workers)
	if err != nil {
		return err
	}

	for _, name := range args {
		if d, ok := described[name]; ok {
			fmt.Printf("📦 %s\n   %s\n", name, d)
		}
	}

	names := make([]string, 0, len(failed))
	for name := range failed {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		logger.WithError(failed[name]).WithField("package", name).Warn("No description")
	}

	if len(described) == 0 {
		return fmt.Errorf("no descriptions found")
	}
	return nil
}
