package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/config"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/errors"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/timeline"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "history.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleResult() *timeline.Result {
	return &timeline.Result{
		Repository: "/src/shop",
		Features: []timeline.Event{
			{Date: "2025-03-01", Title: "Stripe Feature", Icon: "💳", Description: "Work on Stripe across 2 files", Tags: []string{"StripeController", "StripeService"}, Kind: timeline.KindFeature},
		},
		Tooling: []timeline.Event{
			{Date: "2025-01-02", Title: "Frontend, Backend & Linting Setup", Icon: "🧰", Description: "Project kickoff: Set up frontend (react)", Tags: []string{"react", "express", "ESLint"}, Kind: timeline.KindTooling},
			{Date: "2025-02-20", Title: "Payment Processing", Icon: "💳", Description: "Integrated payment processing with stripe", Tags: []string{"stripe"}, Kind: timeline.KindTooling},
		},
		Stats: timeline.Stats{Commits: 12, Buckets: 5, QueryErrors: 1},
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := NewRun(sampleResult())
	require.NoError(t, store.SaveRun(ctx, run))
	require.NotEmpty(t, run.ID)
	require.False(t, run.CreatedAt.IsZero())

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)

	assert.Equal(t, run.Repository, got.Repository)
	assert.Equal(t, run.Features, got.Features)
	assert.Equal(t, run.Tooling, got.Tooling)
	assert.Equal(t, run.Stats, got.Stats)
	assert.WithinDuration(t, run.CreatedAt, got.CreatedAt, time.Second)
}

func TestSQLiteStoreGetMissingRun(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetRun(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStoreListRuns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, repo := range []string{"/src/shop", "/src/blog", "/src/shop"} {
		run := NewRun(sampleResult())
		run.Repository = repo
		run.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.SaveRun(ctx, run))
	}

	all, err := store.ListRuns(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "/src/shop", all[0].Repository)
	assert.True(t, all[0].CreatedAt.After(all[1].CreatedAt))

	shop, err := store.ListRuns(ctx, "/src/shop", 10)
	require.NoError(t, err)
	require.Len(t, shop, 2)
	assert.Equal(t, 1, shop[0].FeatureCount)
	assert.Equal(t, 2, shop[0].ToolingCount)
	assert.Equal(t, 12, shop[0].Commits)

	limited, err := store.ListRuns(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestOpenSelectsBackend(t *testing.T) {
	_, err := Open(config.StorageConfig{Type: "none"}, nil)
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = Open(config.StorageConfig{Type: "mongo"}, nil)
	assert.Error(t, err)

	_, err = Open(config.StorageConfig{Type: "postgres"}, nil)
	assert.Error(t, err)

	store, err := Open(config.StorageConfig{Type: "sqlite", LocalPath: filepath.Join(t.TempDir(), "h.db")}, nil)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestSQLiteStoreErrorsAreTyped(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := NewSQLiteStore(filepath.Join(blocker, "history.db"), nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeStorage))

	_, err = Open(config.StorageConfig{Type: "mongo"}, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}
