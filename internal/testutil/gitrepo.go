// Package testutil provides helpers for tests that need a real git repository.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// GitRepo is a throwaway repository rooted in a test temp dir
type GitRepo struct {
	t    *testing.T
	Root string
}

// NewGitRepo initializes an empty repository, skipping the test when the
// git binary is unavailable.
func NewGitRepo(t *testing.T) *GitRepo {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	repo := &GitRepo{t: t, Root: t.TempDir()}
	repo.Git(time.Time{}, "init", "--quiet")
	repo.Git(time.Time{}, "config", "user.email", "test@example.com")
	repo.Git(time.Time{}, "config", "user.name", "Test User")
	repo.Git(time.Time{}, "config", "commit.gpgsign", "false")
	return repo
}

// Git runs a git command in the repository. A non-zero at pins both author
// and committer dates.
func (r *GitRepo) Git(at time.Time, args ...string) string {
	r.t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = r.Root
	cmd.Env = os.Environ()
	if !at.IsZero() {
		stamp := at.Format(time.RFC3339)
		cmd.Env = append(cmd.Env, "GIT_AUTHOR_DATE="+stamp, "GIT_COMMITTER_DATE="+stamp)
	}

	out, err := cmd.CombinedOutput()
	if err != nil {
		r.t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return string(out)
}

// Write creates or replaces a file relative to the repository root
func (r *GitRepo) Write(path, content string) {
	r.t.Helper()

	full := filepath.Join(r.Root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		r.t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		r.t.Fatal(err)
	}
}

// Commit writes files, stages everything and commits at the given time.
// It returns the new commit SHA.
func (r *GitRepo) Commit(at time.Time, subject string, files map[string]string) string {
	r.t.Helper()

	for path, content := range files {
		r.Write(path, content)
	}
	r.Git(at, "add", "-A")
	r.Git(at, "commit", "--quiet", "--allow-empty", "-m", subject)
	return strings.TrimSpace(r.Git(time.Time{}, "rev-parse", "HEAD"))
}
