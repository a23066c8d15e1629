package timeline

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/config"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/domain"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/errors"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/git"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/logging"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/manifest"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/tooling"
)

// PhaseNamer names one tooling bucket
type PhaseNamer interface {
	Name(ctx context.Context, names []string, kickoff bool) (tooling.Phase, error)
}

// Options configures an Analyzer. Zero values fall back to defaults in
// NewAnalyzer.
type Options struct {
	MaxCommits int
	// Manifest is matched against each changed path's base name, or the
	// whole path when it contains a slash
	Manifest string
	Location *time.Location
	Scoring  config.ScoringConfig

	Extractor manifest.Extractor
	Namer     PhaseNamer
	Logger    *slog.Logger
}

// OptionsFromConfig maps loaded configuration onto analyzer options
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	loc, err := cfg.Location()
	if err != nil {
		return Options{}, errors.ConfigErrorf("invalid timezone %q: %v", cfg.Repo.Timezone, err)
	}
	return Options{
		MaxCommits: cfg.Repo.MaxCommits,
		Manifest:   cfg.Repo.Manifest,
		Location:   loc,
		Scoring:    cfg.Scoring,
	}, nil
}

// Analyzer walks a repository's recent history into timeline events
type Analyzer struct {
	walker      git.Walker
	opts        Options
	detector    *tooling.Detector
	filter      *domain.Filter
	scorer      *domain.Scorer
	synthesizer *domain.Synthesizer
	logger      *slog.Logger
}

// NewAnalyzer creates an analyzer over walker
func NewAnalyzer(walker git.Walker, opts Options) *Analyzer {
	if opts.MaxCommits <= 0 {
		opts.MaxCommits = config.Default().Repo.MaxCommits
	}
	if opts.Manifest == "" {
		opts.Manifest = "package.json"
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Scoring == (config.ScoringConfig{}) {
		opts.Scoring = config.DefaultScoring()
	}
	if opts.Extractor == nil {
		opts.Extractor = manifest.NewPackageJSONScanner()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Component("timeline")
	}
	if opts.Namer == nil {
		opts.Namer = tooling.NewNamer(tooling.WithLogger(opts.Logger))
	}

	detector := tooling.NewDetector()
	return &Analyzer{
		walker:      walker,
		opts:        opts,
		detector:    detector,
		filter:      domain.NewFilter(detector, opts.Manifest),
		scorer:      domain.NewScorer(opts.Scoring),
		synthesizer: domain.NewSynthesizer(opts.Scoring.MaxFeatureEvents, opts.Scoring.MinTermLength),
		logger:      opts.Logger,
	}
}

// Analyze runs a fresh analysis with its own dedup state
func Analyze(ctx context.Context, walker git.Walker, opts Options) (*Result, error) {
	return NewAnalyzer(walker, opts).Run(ctx, tooling.NewSeenSet())
}

// bucket accumulates one calendar day's detections
type bucket struct {
	date  string
	names *orderedSet // manifest dependency names
	tools *orderedSet
	files *orderedSet
}

// Run resets seen and analyzes the history. A nil seen runs with a private
// set. Only a RepositoryError (or context cancellation) is returned;
// per-commit and per-bucket failures are absorbed into Result.Stats.
func (a *Analyzer) Run(ctx context.Context, seen *tooling.SeenSet) (*Result, error) {
	if seen == nil {
		seen = tooling.NewSeenSet()
	}
	seen.Reset()
	result := &Result{}
	if r, ok := a.walker.(interface{ Root() string }); ok {
		result.Repository = r.Root()
	}

	commits, err := a.walker.RecentCommits(ctx, a.opts.MaxCommits)
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeRepository) {
			return nil, err
		}
		return nil, errors.RepositoryErrorf(err, "failed to list commits")
	}

	// oldest first; commits sharing a timestamp keep reversed log order
	ordered := make([]git.Commit, len(commits))
	for i, c := range commits {
		ordered[len(commits)-1-i] = c
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	buckets := make(map[string]*bucket)
	for _, commit := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("analysis cancelled: %w", err)
		}

		date := commit.Timestamp.In(a.opts.Location).Format(DateLayout)
		b, ok := buckets[date]
		if !ok {
			b = &bucket{date: date, names: newOrderedSet(), tools: newOrderedSet(), files: newOrderedSet()}
			buckets[date] = b
		}

		a.processCommit(ctx, commit, b, &result.Stats)
		result.Stats.Commits++
	}

	dates := make([]string, 0, len(buckets))
	for d := range buckets {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	result.Stats.Buckets = len(dates)

	for i, date := range dates {
		b := buckets[date]

		for _, f := range a.synthesizer.Features(a.scorer.Score(b.files.items)) {
			result.Features = append(result.Features, Event{
				Date:        date,
				Title:       f.Title,
				Icon:        f.Icon,
				Description: f.Description,
				Tags:        f.Tags,
				Kind:        KindFeature,
			})
		}

		if ev, ok := a.toolingEvent(ctx, b, i == 0, seen, &result.Stats); ok {
			result.Tooling = append(result.Tooling, ev)
		}
	}

	a.logger.Info("timeline analysis complete",
		"commits", result.Stats.Commits,
		"buckets", result.Stats.Buckets,
		"features", len(result.Features),
		"tooling", len(result.Tooling),
		"query_errors", result.Stats.QueryErrors,
		"parse_errors", result.Stats.ParseErrors,
		"phase_errors", result.Stats.PhaseErrors)

	return result, nil
}

func (a *Analyzer) processCommit(ctx context.Context, commit git.Commit, b *bucket, stats *Stats) {
	paths, err := a.walker.ChangedPaths(ctx, commit.SHA)
	if err != nil {
		stats.QueryErrors++
		a.logger.Warn("skipping commit, changed paths unavailable", "sha", commit.SHA, "error", err)
		return
	}

	for _, p := range paths {
		if !a.isManifest(p) {
			continue
		}
		diff, err := a.walker.FileDiff(ctx, commit.SHA, p)
		if err != nil {
			stats.QueryErrors++
			a.logger.Warn("manifest diff unavailable", "sha", commit.SHA, "path", p, "error", err)
			continue
		}

		extraction := a.opts.Extractor.Extract(diff)
		if extraction.Skipped > 0 || extraction.Malformed {
			stats.ParseErrors += extraction.Skipped
			if extraction.Malformed {
				stats.ParseErrors++
			}
			perr := extraction.Err
			if perr == nil {
				perr = errors.ParseErrorf(nil, "%d unrecognized lines in dependency sections", extraction.Skipped)
			}
			a.logger.Warn("skipped unrecognized manifest lines",
				"sha", commit.SHA, "path", p,
				"skipped", extraction.Skipped, "malformed", extraction.Malformed, "error", perr)
		}
		b.names.add(extraction.Names...)
	}

	b.tools.add(a.detector.Detect(paths)...)
	b.files.add(a.filter.SourceFiles(paths)...)
}

func (a *Analyzer) isManifest(p string) bool {
	if strings.Contains(a.opts.Manifest, "/") {
		return p == a.opts.Manifest
	}
	return path.Base(p) == a.opts.Manifest
}

func (a *Analyzer) toolingEvent(ctx context.Context, b *bucket, kickoff bool, seen *tooling.SeenSet, stats *Stats) (Event, bool) {
	candidates := append(append([]string(nil), b.names.items...), b.tools.items...)
	fresh := seen.Claim(candidates)
	if len(fresh) == 0 {
		return Event{}, false
	}

	phase, err := a.name(ctx, fresh, kickoff)
	if err != nil {
		stats.PhaseErrors++
		a.logger.Warn("phase naming failed, using fallback", "date", b.date, "error", err)
		phase = tooling.Fallback(fresh, kickoff)
	}
	if phase.EnrichmentFailed {
		stats.EnrichmentFailures++
	}

	return Event{
		Date:        b.date,
		Title:       phase.Title,
		Icon:        phase.Icon,
		Description: phase.Description,
		Tags:        phase.Tags,
		Kind:        KindTooling,
	}, true
}

// name shields the run from a misbehaving namer
func (a *Analyzer) name(ctx context.Context, names []string, kickoff bool) (phase tooling.Phase, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.PhaseGenerationErrorf(nil, "phase namer panicked: %v", r)
		}
	}()
	return a.opts.Namer.Name(ctx, names, kickoff)
}

type orderedSet struct {
	items []string
	seen  map[string]bool
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]bool)}
}

func (s *orderedSet) add(values ...string) {
	for _, v := range values {
		if v == "" || s.seen[v] {
			continue
		}
		s.seen[v] = true
		s.items = append(s.items, v)
	}
}
