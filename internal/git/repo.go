package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/errors"
)

// Walker is the read-only history access the timeline engine consumes.
// Every call is synchronous; callers visit commits one at a time.
type Walker interface {
	// RecentCommits returns up to limit most recent commits, newest first.
	RecentCommits(ctx context.Context, limit int) ([]Commit, error)
	// ChangedPaths returns the paths touched by a commit.
	ChangedPaths(ctx context.Context, sha string) ([]string, error)
	// FileDiff returns the unified diff of one path in a commit.
	FileDiff(ctx context.Context, sha, path string) (string, error)
}

// Options tunes the git queries
type Options struct {
	// DiffContext is the number of unified context lines requested for
	// FileDiff. Manifest scanning needs the enclosing section header inside
	// the hunk, so this defaults to a value larger than any manifest.
	DiffContext int
}

// DefaultDiffContext is used when Options.DiffContext is unset
const DefaultDiffContext = 100000

// GitWalker implements Walker by shelling out to the git binary
type GitWalker struct {
	root        string
	diffContext int
}

// Open verifies root is inside a git working tree and returns a walker
// rooted at the top level. Failure is a RepositoryError.
func Open(ctx context.Context, root string, opts Options) (*GitWalker, error) {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel")
	cmd.Dir = root
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, errors.RepositoryErrorf(err, "%s is not inside a git working copy", root).
			WithContext("stderr", strings.TrimSpace(stderr.String()))
	}

	top := strings.TrimSpace(string(output))
	if top == "" {
		return nil, errors.RepositoryErrorf(nil, "%s has no working tree", root)
	}

	if opts.DiffContext <= 0 {
		opts.DiffContext = DefaultDiffContext
	}

	return &GitWalker{root: top, diffContext: opts.DiffContext}, nil
}

// Root returns the repository top-level directory
func (w *GitWalker) Root() string {
	return w.root
}

// run executes git in the repository root and returns stdout
func (w *GitWalker) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = w.root
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s failed: %w (stderr: %s)", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return output, nil
}

// hasCommits reports whether HEAD resolves. An unborn branch has none.
func (w *GitWalker) hasCommits(ctx context.Context) bool {
	_, err := w.run(ctx, "rev-parse", "--verify", "--quiet", "HEAD")
	return err == nil
}

// validRevision rejects revisions git would read as options
func validRevision(sha string) bool {
	return sha != "" && !strings.HasPrefix(sha, "-") && !strings.ContainsAny(sha, " \t\n")
}
