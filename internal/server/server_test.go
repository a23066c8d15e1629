package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/config"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/enrich"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/errors"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/logging"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/storage"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/testutil"
)

func connect(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := s.MCP().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func decode(t *testing.T, res *mcp.CallToolResult, v any) {
	t.Helper()
	require.False(t, res.IsError, "tool returned an error result")
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")
	require.NoError(t, json.Unmarshal([]byte(text.Text), v))
}

func sampleRepo(t *testing.T) string {
	repo := testutil.NewGitRepo(t)
	repo.Commit(time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC), "init", map[string]string{
		"package.json":   "{\n  \"dependencies\": {\n    \"react\": \"^18.2.0\",\n    \"express\": \"^4.18.2\"\n  }\n}\n",
		".eslintrc.json": "{}\n",
	})
	repo.Commit(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), "stripe", map[string]string{
		"src/payment/StripeController.js": "module.exports = {}\n",
		"src/payment/StripeService.js":    "module.exports = {}\n",
	})
	return repo.Root
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Storage.Type = "none"
	return cfg
}

func toolNames(t *testing.T, session *mcp.ClientSession) []string {
	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	return names
}

func TestToolRegistration(t *testing.T) {
	plain := connect(t, New(testConfig()))
	assert.ElementsMatch(t, []string{"analyze_timeline"}, toolNames(t, plain))

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"), logger)
	require.NoError(t, err)
	defer store.Close()

	describer := enrich.DescriberFunc(func(ctx context.Context, name string) (string, error) {
		return "about " + name, nil
	})
	full := connect(t, New(testConfig(), WithDescriber(describer), WithStore(store)))
	assert.ElementsMatch(t, []string{"analyze_timeline", "describe_dependency", "list_runs"}, toolNames(t, full))
}

func TestAnalyzeTimelineTool(t *testing.T) {
	root := sampleRepo(t)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"), logger)
	require.NoError(t, err)
	defer store.Close()

	session := connect(t, New(testConfig(), WithStore(store)))
	ctx := context.Background()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "analyze_timeline",
		Arguments: map[string]any{"repo_path": root, "max_commits": 50},
	})
	require.NoError(t, err)

	var out AnalyzeOutput
	decode(t, res, &out)

	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, 2, out.Stats.Commits)
	require.Len(t, out.Tooling, 1)
	assert.Equal(t, "Frontend, Backend & Linting Setup", out.Tooling[0].Title)
	require.Len(t, out.Features, 1)
	assert.Equal(t, "💳", out.Features[0].Icon)

	res, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "list_runs",
		Arguments: map[string]any{"repo_path": root},
	})
	require.NoError(t, err)

	var history HistoryOutput
	decode(t, res, &history)
	require.Len(t, history.Runs, 1)
	assert.Equal(t, out.RunID, history.Runs[0].ID)
	assert.Equal(t, 1, history.Runs[0].FeatureCount)
}

func TestAnalyzeTimelineToolRejectsNonRepository(t *testing.T) {
	session := connect(t, New(testConfig()))

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "analyze_timeline",
		Arguments: map[string]any{"repo_path": t.TempDir()},
	})
	if err == nil {
		assert.True(t, res.IsError)
	}
}

func TestDescribeDependencyTool(t *testing.T) {
	describer := enrich.DescriberFunc(func(ctx context.Context, name string) (string, error) {
		if name == "ghost" {
			return "", fmt.Errorf("not found")
		}
		return "Fast, unopinionated, minimalist web framework", nil
	})
	tool := NewDescribeDependencyTool(describer)

	out, err := tool.Execute(context.Background(), DescribeInput{Name: "express"})
	require.NoError(t, err)
	assert.Equal(t, "express", out.Name)
	assert.Contains(t, out.Description, "web framework")

	_, err = tool.Execute(context.Background(), DescribeInput{Name: "ghost"})
	assert.Error(t, err)

	_, err = tool.Execute(context.Background(), DescribeInput{})
	assert.Error(t, err)
}

func TestAnalyzeTimelineToolDefaultsToConfiguredRepo(t *testing.T) {
	root := sampleRepo(t)
	cfg := testConfig()
	cfg.Repo.Path = root

	out, err := NewAnalyzeTimelineTool(cfg, nil, nil).Execute(context.Background(), AnalyzeInput{MaxCommits: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Stats.Commits)
	assert.Empty(t, out.RunID)
	assert.NotNil(t, out.Tooling)

	_, err = NewAnalyzeTimelineTool(cfg, nil, nil).Execute(context.Background(), AnalyzeInput{MaxCommits: -1})
	assert.Error(t, err)
}

type failingStore struct{}

func (failingStore) SaveRun(ctx context.Context, run *storage.Run) error {
	return errors.StorageErrorf(fmt.Errorf("disk full"), "save run")
}

func (failingStore) ListRuns(ctx context.Context, repository string, limit int) ([]storage.RunSummary, error) {
	return nil, nil
}

func (failingStore) GetRun(ctx context.Context, id string) (*storage.Run, error) {
	return nil, storage.ErrNotFound
}

func (failingStore) Close() error { return nil }

func TestAnalyzeTimelineToolKeepsResultWhenSaveFails(t *testing.T) {
	cfg := testConfig()
	cfg.Repo.Path = sampleRepo(t)

	out, err := NewAnalyzeTimelineTool(cfg, nil, failingStore{}).Execute(context.Background(), AnalyzeInput{})
	require.NoError(t, err)
	assert.Empty(t, out.RunID)
	assert.Len(t, out.Tooling, 1)
	assert.Len(t, out.Features, 1)
}

func TestListRunsResolvesSubdirectory(t *testing.T) {
	root := sampleRepo(t)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"), logger)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	analyzed, err := NewAnalyzeTimelineTool(testConfig(), nil, store).Execute(ctx, AnalyzeInput{RepoPath: root})
	require.NoError(t, err)
	require.NotEmpty(t, analyzed.RunID)

	out, err := NewListRunsTool(store).Execute(ctx, HistoryInput{RepoPath: filepath.Join(root, "src", "payment")})
	require.NoError(t, err)
	require.Len(t, out.Runs, 1)
	assert.Equal(t, analyzed.RunID, out.Runs[0].ID)
	assert.Equal(t, analyzed.Repository, out.Runs[0].Repository)
}

func TestHandlerRecoversPanics(t *testing.T) {
	h := handler(logging.Discard(), "describe_dependency", func(ctx context.Context, in DescribeInput) (DescribeOutput, error) {
		panic("nil describer")
	})

	res, out, err := h(context.Background(), nil, DescribeInput{Name: "react"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInternal))
	assert.Nil(t, res)
	assert.Empty(t, out.Name)
}
