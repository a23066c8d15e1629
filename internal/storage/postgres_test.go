package storage

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/errors"
)

// postgresDSNEnv points the integration tests at a disposable database
const postgresDSNEnv = "GIT_TIMELINE_TEST_POSTGRES_DSN"

func newPostgresTestStore(t *testing.T) *PostgresStore {
	t.Helper()

	dsn := os.Getenv(postgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", postgresDSNEnv)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store, err := NewPostgresStore(dsn, logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewPostgresStoreRequiresDSN(t *testing.T) {
	_, err := NewPostgresStore("", nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestNewPostgresStoreUnreachable(t *testing.T) {
	_, err := NewPostgresStore("postgres://timeline@127.0.0.1:1/timeline?sslmode=disable&connect_timeout=1", nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeStorage))
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	store := newPostgresTestStore(t)
	ctx := context.Background()

	run := NewRun(sampleResult())
	run.Repository = "/src/" + uuid.New().String()
	t.Cleanup(func() {
		store.db.Exec(`DELETE FROM runs WHERE repository = $1`, run.Repository)
	})

	require.NoError(t, store.SaveRun(ctx, run))

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Features, got.Features)
	assert.Equal(t, run.Tooling, got.Tooling)
	assert.Equal(t, run.Stats, got.Stats)
	assert.WithinDuration(t, run.CreatedAt, got.CreatedAt, time.Second)

	_, err = store.GetRun(ctx, uuid.New().String())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStoreListRuns(t *testing.T) {
	store := newPostgresTestStore(t)
	ctx := context.Background()

	repo := "/src/" + uuid.New().String()
	t.Cleanup(func() {
		store.db.Exec(`DELETE FROM runs WHERE repository = $1`, repo)
	})

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		run := NewRun(sampleResult())
		run.Repository = repo
		run.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.SaveRun(ctx, run))
	}

	runs, err := store.ListRuns(ctx, repo, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.True(t, runs[0].CreatedAt.After(runs[1].CreatedAt))
	assert.Equal(t, 1, runs[0].FeatureCount)
	assert.Equal(t, 2, runs[0].ToolingCount)
}
