// Package server exposes timeline analysis as MCP tools over stdio.
package server

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/config"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/enrich"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/errors"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/logging"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/storage"
)

const (
	ServerName = "git-timeline"
)

// Version is overridden at build time
var Version = "0.1.0"

// Server wires the tools into an MCP server
type Server struct {
	mcp    *mcp.Server
	logger *slog.Logger
}

// Option configures optional collaborators
type Option func(*options)

type options struct {
	describer enrich.Describer
	store     storage.Store
}

// WithDescriber enables enrichment and the describe_dependency tool
func WithDescriber(d enrich.Describer) Option {
	return func(o *options) { o.describer = d }
}

// WithStore persists analyze_timeline runs and enables list_runs
func WithStore(s storage.Store) Option {
	return func(o *options) { o.store = s }
}

// New registers the tools
func New(cfg *config.Config, opts ...Option) *Server {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		mcp:    mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: Version}, nil),
		logger: logging.Component("server"),
	}

	analyze := NewAnalyzeTimelineTool(cfg, o.describer, o.store)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "analyze_timeline",
		Description: "Reconstruct a dated timeline of business features and tooling adoption from a repository's git history.",
	}, handler(s.logger, "analyze_timeline", analyze.Execute))

	if o.describer != nil {
		describe := NewDescribeDependencyTool(o.describer)
		mcp.AddTool(s.mcp, &mcp.Tool{
			Name:        "describe_dependency",
			Description: "Look up the registry description of a package.",
		}, handler(s.logger, "describe_dependency", describe.Execute))
	}

	if o.store != nil {
		runs := NewListRunsTool(o.store)
		mcp.AddTool(s.mcp, &mcp.Tool{
			Name:        "list_runs",
			Description: "List previously saved timeline analyses, newest first.",
		}, handler(s.logger, "list_runs", runs.Execute))
	}

	return s
}

// MCP returns the underlying server, for alternate transports
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Run serves on stdin/stdout until the client disconnects or ctx ends
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP server started on stdio", "name", ServerName, "version", Version)
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// handler adapts a typed Execute method to the SDK's handler signature
func handler[In, Out any](logger *slog.Logger, name string, exec func(context.Context, In) (Out, error)) mcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, req *mcp.CallToolRequest, in In) (result *mcp.CallToolResult, out Out, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = errors.InternalErrorf("tool %s panicked: %v", name, r)
			}
			if err != nil {
				level := slog.LevelWarn
				if errors.IsFatal(err) {
					level = slog.LevelError
				}
				logger.Log(ctx, level, "tool call failed", "tool", name, "type", errors.GetType(err).String(), "error", err)
				var zero Out
				result, out = nil, zero
			}
		}()

		out, err = exec(ctx, in)
		return nil, out, err
	}
}
