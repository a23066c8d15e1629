// Package manifest mines dependency manifest diffs for newly added
// dependency names.
//
// The scan is line oriented: it never parses the manifest as a document.
// Callers depend only on the Extractor interface so a structured parser
// can replace the scanner without touching scoring or categorization.
package manifest

import (
	"regexp"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/errors"
)

// Extractor turns one manifest diff into dependency names
type Extractor interface {
	Extract(unifiedDiff string) Extraction
}

// Extraction is the result of scanning one diff
type Extraction struct {
	// Names are de-duplicated, in first-seen order
	Names []string
	// Skipped counts added lines inside a dependency section that were
	// neither a key nor a closing delimiter
	Skipped int
	// Malformed is set when the diff could not be parsed into hunks and a
	// raw line scan was used instead; Err then carries the ParseError
	Malformed bool
	Err       error
}

// PackageJSONScanner extracts dependency names from package.json diffs.
//
// A version bump rewrites the dependency's line, so it produces the same
// added "key": line as a brand new dependency. The scanner cannot tell the
// two apart; first-sighting dedup downstream only masks the repeat.
type PackageJSONScanner struct{}

// NewPackageJSONScanner returns the package.json line scanner
func NewPackageJSONScanner() *PackageJSONScanner {
	return &PackageJSONScanner{}
}

var (
	keyLine   = regexp.MustCompile(`^(\s*)"([^"]+)"\s*:(.*)$`)
	closeLine = regexp.MustCompile(`^\s*\}`)
)

// sectionKeys open a dependency section
var sectionKeys = map[string]bool{
	"dependencies":         true,
	"devDependencies":      true,
	"peerDependencies":     true,
	"optionalDependencies": true,
}

// metadataKeys are never dependency names even when they match the key
// pattern inside a section
var metadataKeys = map[string]bool{
	"name":                 true,
	"version":              true,
	"description":          true,
	"scripts":              true,
	"main":                 true,
	"private":              true,
	"license":              true,
	"author":               true,
	"contributors":         true,
	"repository":           true,
	"keywords":             true,
	"engines":              true,
	"type":                 true,
	"module":               true,
	"types":                true,
	"typings":              true,
	"files":                true,
	"bin":                  true,
	"homepage":             true,
	"bugs":                 true,
	"workspaces":           true,
	"exports":              true,
	"browserslist":         true,
	"dependencies":         true,
	"devDependencies":      true,
	"peerDependencies":     true,
	"optionalDependencies": true,
}

// Extract scans a unified diff of package.json
func (s *PackageJSONScanner) Extract(unifiedDiff string) Extraction {
	var ex Extraction
	if strings.TrimSpace(unifiedDiff) == "" {
		return ex
	}

	c := newCollector()

	fd, err := diff.ParseFileDiff([]byte(unifiedDiff))
	if err != nil || fd == nil || len(fd.Hunks) == 0 {
		if err != nil {
			ex.Malformed = true
			ex.Err = errors.ParseErrorf(err, "manifest diff did not parse, scanned raw lines")
		}
		ex.Skipped = scanRaw(unifiedDiff, c)
		ex.Names = c.names
		return ex
	}

	for _, hunk := range fd.Hunks {
		ex.Skipped += scanHunk(strings.Split(string(hunk.Body), "\n"), c)
	}

	ex.Names = c.names
	return ex
}

// scanRaw walks the diff text directly, splitting hunks at their headers
func scanRaw(text string, c *collector) int {
	var hunk []string
	skipped := 0
	inHunk := false

	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			skipped += scanHunk(hunk, c)
			hunk = hunk[:0]
			inHunk = true
			continue
		case strings.HasPrefix(line, "diff "), strings.HasPrefix(line, "index "),
			strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			inHunk = false
			continue
		}
		if inHunk {
			hunk = append(hunk, line)
		}
	}

	return skipped + scanHunk(hunk, c)
}

// postLine is one line of the post-change file as seen in a hunk
type postLine struct {
	text  string
	added bool
}

// postChange drops removed lines and "\ No newline" markers, which
// describe the old file only
func postChange(raw []string) []postLine {
	out := make([]postLine, 0, len(raw))
	for _, line := range raw {
		if line == "" {
			continue
		}
		switch line[0] {
		case '+':
			out = append(out, postLine{text: line[1:], added: true})
		case ' ':
			out = append(out, postLine{text: line[1:]})
		}
	}
	return out
}

// opensObject reports whether a key's value starts an object that stays
// open past this line
func opensObject(value string) bool {
	v := strings.TrimSpace(value)
	return strings.HasPrefix(v, "{") && !strings.Contains(v, "}")
}

// scanHunk collects added keys inside dependency sections of one hunk and
// returns the number of added lines it could not read.
func scanHunk(raw []string, c *collector) int {
	lines := postChange(raw)
	skipped := 0

	for i := 0; i < len(lines); i++ {
		m := keyLine.FindStringSubmatch(lines[i].text)
		if m == nil || !sectionKeys[m[2]] || !opensObject(m[3]) {
			continue
		}

		if closing, ok := matchClose(lines, i); ok {
			skipped += scanByDepth(lines[i+1:closing], c)
			i = closing
			continue
		}
		consumed, n := scanByIndent(lines[i+1:], len(m[1]), c)
		skipped += n
		// the sibling key that ended the section may open the next one
		i += consumed
	}

	return skipped
}

// matchClose finds the line closing the object opened at lines[open]
func matchClose(lines []postLine, open int) (int, bool) {
	depth := 1
	for j := open + 1; j < len(lines); j++ {
		t := lines[j].text
		if m := keyLine.FindStringSubmatch(t); m != nil {
			if opensObject(m[3]) {
				depth++
			}
			continue
		}
		switch trimmed := strings.TrimSpace(t); {
		case strings.HasPrefix(trimmed, "{") && !strings.Contains(trimmed, "}"):
			depth++
		case closeLine.MatchString(t):
			depth--
			if depth == 0 {
				return j, true
			}
		}
	}
	return 0, false
}

// scanByDepth reads a section whose closing brace is in view. Only keys
// directly inside the section are dependency names.
func scanByDepth(body []postLine, c *collector) int {
	depth := 1
	skipped := 0
	for _, l := range body {
		if m := keyLine.FindStringSubmatch(l.text); m != nil {
			if depth == 1 && l.added && !metadataKeys[m[2]] {
				c.add(m[2])
			}
			if opensObject(m[3]) {
				depth++
			}
			continue
		}
		switch {
		case closeLine.MatchString(l.text):
			depth--
		case l.added && strings.TrimSpace(l.text) != "":
			skipped++
		}
	}
	return skipped
}

// scanByIndent reads a section whose closing brace is out of view. A key
// no deeper than the header is a sibling and ends the section. It returns
// how many lines were consumed and how many were skipped.
func scanByIndent(body []postLine, headerIndent int, c *collector) (int, int) {
	skipped := 0
	for j, l := range body {
		m := keyLine.FindStringSubmatch(l.text)
		switch {
		case m != nil && len(m[1]) > headerIndent:
			if l.added && !metadataKeys[m[2]] {
				c.add(m[2])
			}
		case m != nil:
			return j, skipped
		case l.added && strings.TrimSpace(l.text) != "":
			skipped++
		}
	}
	return len(body), skipped
}

// collector de-duplicates names while keeping first-seen order
type collector struct {
	seen  map[string]bool
	names []string
}

func newCollector() *collector {
	return &collector{seen: make(map[string]bool)}
}

func (c *collector) add(name string) {
	if c.seen[name] {
		return
	}
	c.seen[name] = true
	c.names = append(c.names, name)
}
