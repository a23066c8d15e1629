package domain

import (
	"path"
	"strings"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/git"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/tooling"
)

var lockFiles = map[string]bool{
	"package-lock.json":   true,
	"npm-shrinkwrap.json": true,
	"yarn.lock":           true,
	"pnpm-lock.yaml":      true,
	"bun.lockb":           true,
	"go.sum":              true,
	"cargo.lock":          true,
	"gemfile.lock":        true,
	"composer.lock":       true,
	"poetry.lock":         true,
}

var manifestFiles = map[string]bool{
	"package.json":     true,
	"go.mod":           true,
	"cargo.toml":       true,
	"gemfile":          true,
	"composer.json":    true,
	"pyproject.toml":   true,
	"requirements.txt": true,
	"pom.xml":          true,
	"build.gradle":     true,
}

// excludedDirs never contribute, wherever they appear in a path
var excludedDirs = map[string]bool{
	// generated / vendored
	"node_modules": true, "vendor": true, "dist": true, "build": true, "out": true,
	"coverage": true, "target": true, ".next": true, ".nuxt": true, "__pycache__": true,
	// documentation
	"docs": true, "doc": true,
	// tests
	"test": true, "tests": true, "__tests__": true, "spec": true, "__mocks__": true,
	"e2e": true, "fixtures": true,
}

var docExtensions = map[string]bool{
	".md": true, ".mdx": true, ".rst": true, ".txt": true, ".adoc": true,
}

// Filter decides which changed paths count as source evidence for domain
// scoring. Everything it rejects is invisible to tags, titles and scores.
type Filter struct {
	detector  *tooling.Detector
	manifests map[string]bool
}

// NewFilter builds a filter; extraManifests are matched by base name in
// addition to the built-in manifest list.
func NewFilter(detector *tooling.Detector, extraManifests ...string) *Filter {
	if detector == nil {
		detector = tooling.NewDetector()
	}
	manifests := make(map[string]bool, len(manifestFiles)+len(extraManifests))
	for m := range manifestFiles {
		manifests[m] = true
	}
	for _, m := range extraManifests {
		manifests[strings.ToLower(path.Base(m))] = true
	}
	return &Filter{detector: detector, manifests: manifests}
}

// Include reports whether p is a source file that may carry domain signal
func (f *Filter) Include(p string) bool {
	if p == "" {
		return false
	}

	segments := strings.Split(p, "/")
	base := segments[len(segments)-1]
	lowerBase := strings.ToLower(base)

	for _, dir := range segments[:len(segments)-1] {
		d := strings.ToLower(dir)
		if excludedDirs[d] || strings.HasPrefix(d, ".") {
			return false
		}
	}

	switch {
	case strings.HasPrefix(base, "."):
		return false
	case lockFiles[lowerBase], strings.HasSuffix(lowerBase, ".lock"):
		return false
	case f.manifests[lowerBase]:
		return false
	case docExtensions[path.Ext(lowerBase)]:
		return false
	case isTestFile(lowerBase):
		return false
	case strings.Contains(lowerBase, ".config."), strings.HasSuffix(lowerBase, ".d.ts"), strings.Contains(lowerBase, ".min."):
		return false
	}

	if _, ok := f.detector.Match(p); ok {
		return false
	}

	return git.IsSourceFile(p)
}

// SourceFiles returns the included paths, in input order
func (f *Filter) SourceFiles(paths []string) []string {
	var out []string
	for _, p := range paths {
		if f.Include(p) {
			out = append(out, p)
		}
	}
	return out
}

func isTestFile(lowerBase string) bool {
	return strings.Contains(lowerBase, "_test.") ||
		strings.Contains(lowerBase, ".test.") ||
		strings.Contains(lowerBase, ".spec.") ||
		strings.HasPrefix(lowerBase, "test_")
}
