package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/enrich"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/server"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	Long: `Serve exposes analyze_timeline (and, when configured, describe_dependency
and list_runs) as Model Context Protocol tools over stdin/stdout.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []server.Option

	if cfg.Enrich.Enabled {
		client, closeCache, err := enrich.FromConfig(cfg.Enrich)
		if err != nil {
			logger.WithError(err).Warn("Description lookups disabled")
		} else {
			defer closeCache()
			opts = append(opts, server.WithDescriber(client))
		}
	}

	store, err := storage.Open(cfg.Storage, logger)
	switch {
	case err == nil:
		defer store.Close()
		opts = append(opts, server.WithStore(store))
	case err == storage.ErrDisabled:
	default:
		logger.WithError(err).Warn("Run history disabled")
	}

	server.Version = Version
	srv := server.New(cfg, opts...)
	logger.Info("Serving MCP on stdio")

	if err := srv.Run(ctx); err != nil && ctx.Err() != context.Canceled {
		return err
	}
	return nil
}
