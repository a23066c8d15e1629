package git

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/errors"
)

// Commit is one entry of the walked history. Subject is kept only as
// context for callers and is never used for classification.
type Commit struct {
	SHA       string    `json:"sha"`
	Timestamp time.Time `json:"timestamp"`
	Subject   string    `json:"subject"`
}

const fieldSep = "\x1f"

// RecentCommits lists up to limit most recent commits, newest first.
// A repository with no commits yields an empty list. Any other failure
// means the history is unreadable and is reported as a RepositoryError.
func (w *GitWalker) RecentCommits(ctx context.Context, limit int) ([]Commit, error) {
	if limit <= 0 {
		return nil, nil
	}
	if !w.hasCommits(ctx) {
		return nil, nil
	}

	output, err := w.run(ctx, "log",
		fmt.Sprintf("--max-count=%d", limit),
		"--no-color",
		"--pretty=format:%H%x1f%aI%x1f%s")
	if err != nil {
		return nil, errors.RepositoryErrorf(err, "failed to list commits in %s", w.root)
	}

	return parseLogOutput(string(output))
}

// parseLogOutput parses "sha<US>iso-date<US>subject" records, one per line.
// Malformed records are skipped.
func parseLogOutput(output string) ([]Commit, error) {
	var commits []Commit

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, fieldSep, 3)
		if len(parts) < 2 {
			continue
		}

		timestamp, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			continue
		}

		commit := Commit{SHA: parts[0], Timestamp: timestamp}
		if len(parts) == 3 {
			commit.Subject = parts[2]
		}
		commits = append(commits, commit)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning git log output: %w", err)
	}

	return commits, nil
}
