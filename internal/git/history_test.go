package git

import (
	"context"
	"testing"
	"time"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/errors"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogOutput(t *testing.T) {
	output := "abc123\x1f2025-03-01T10:00:00+01:00\x1fAdd stripe | checkout\n" +
		"def456\x1f2025-02-28T23:30:00Z\x1f\n" +
		"garbage line without separators\n" +
		"bad789\x1fnot-a-date\x1fBroken\n"

	commits, err := parseLogOutput(output)
	require.NoError(t, err)
	require.Len(t, commits, 2)

	assert.Equal(t, "abc123", commits[0].SHA)
	assert.Equal(t, "Add stripe | checkout", commits[0].Subject)
	assert.Equal(t, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), commits[0].Timestamp.UTC())

	assert.Equal(t, "def456", commits[1].SHA)
	assert.Empty(t, commits[1].Subject)
}

func TestSplitNUL(t *testing.T) {
	assert.Equal(t, []string{"src/a.js", "docs/read me.md"}, splitNUL("src/a.js\x00docs/read me.md\x00"))
	assert.Nil(t, splitNUL(""))
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		lang string
		ok   bool
	}{
		{"src/payment/StripeController.js", "JavaScript", true},
		{"web/App.TSX", "TypeScript", true},
		{"cmd/main.go", "Go", true},
		{"README.md", "", false},
		{"Dockerfile", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			lang, ok := DetectLanguage(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.lang, lang)
			assert.Equal(t, tt.ok, IsSourceFile(tt.path))
		})
	}
}

func TestOpenRejectsNonRepository(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(context.Background(), dir, Options{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeRepository))
	assert.True(t, errors.IsFatal(err))
}

func TestGitWalkerAgainstRealRepository(t *testing.T) {
	repo := testutil.NewGitRepo(t)
	ctx := context.Background()

	day1 := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 1, 3, 9, 0, 0, 0, time.UTC)

	first := repo.Commit(day1, "initial", map[string]string{
		"package.json":  "{\n  \"name\": \"demo\",\n  \"dependencies\": {\n    \"react\": \"^18.0.0\"\n  }\n}\n",
		".eslintrc.json": "{}\n",
	})
	second := repo.Commit(day2, "payments", map[string]string{
		"src/payment/StripeService.js": "export {}\n",
	})

	walker, err := Open(ctx, repo.Root, Options{})
	require.NoError(t, err)

	commits, err := walker.RecentCommits(ctx, 10)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, second, commits[0].SHA, "newest first")
	assert.Equal(t, first, commits[1].SHA)
	assert.True(t, commits[1].Timestamp.Equal(day1))

	limited, err := walker.RecentCommits(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	paths, err := walker.ChangedPaths(ctx, first)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"package.json", ".eslintrc.json"}, paths)

	diff, err := walker.FileDiff(ctx, first, "package.json")
	require.NoError(t, err)
	assert.Contains(t, diff, "+    \"react\": \"^18.0.0\"")

	_, err = walker.ChangedPaths(ctx, "deadbeefdeadbeef")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeQuery))

	_, err = walker.FileDiff(ctx, "--output=/tmp/x", "package.json")
	assert.True(t, errors.IsType(err, errors.ErrorTypeQuery))
}

func TestRecentCommitsEmptyRepository(t *testing.T) {
	repo := testutil.NewGitRepo(t)

	walker, err := Open(context.Background(), repo.Root, Options{})
	require.NoError(t, err)

	commits, err := walker.RecentCommits(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, commits)
}
