package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/errors"
)

// ChangedPaths returns the repository-relative paths a commit touched.
// The root commit is diffed against the empty tree. Merge commits report
// no paths.
func (w *GitWalker) ChangedPaths(ctx context.Context, sha string) ([]string, error) {
	if !validRevision(sha) {
		return nil, errors.QueryErrorf(nil, "invalid revision %q", sha)
	}

	output, err := w.run(ctx, "diff-tree", "--root", "--no-commit-id", "--name-only", "-r", "-z", sha)
	if err != nil {
		return nil, errors.QueryErrorf(err, "changed paths for %s", sha)
	}

	return splitNUL(string(output)), nil
}

// FileDiff returns the unified diff of path in commit sha with the
// configured amount of context. An untouched path yields "".
func (w *GitWalker) FileDiff(ctx context.Context, sha, path string) (string, error) {
	if !validRevision(sha) {
		return "", errors.QueryErrorf(nil, "invalid revision %q", sha)
	}

	output, err := w.run(ctx, "show",
		"--format=",
		"--no-color",
		"--no-ext-diff",
		fmt.Sprintf("--unified=%d", w.diffContext),
		sha, "--", path)
	if err != nil {
		return "", errors.QueryErrorf(err, "diff of %s in %s", path, sha)
	}

	return string(output), nil
}

// splitNUL splits -z output into non-empty entries
func splitNUL(output string) []string {
	var result []string
	for _, p := range strings.Split(output, "\x00") {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
