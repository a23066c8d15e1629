// Package domain infers business-capability labels from the paths of
// source files changed together, and turns them into feature events.
package domain

import (
	"math"
	"path"
	"sort"
	"strings"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/config"
)

const (
	// GeneralLabel names the synthetic domain used when nothing scores
	GeneralLabel = "General Updates"
	GeneralIcon  = "🔧"
)

// Domain is a scored business-capability label with the files behind it
type Domain struct {
	Label     string   `json:"label"`
	Icon      string   `json:"icon"`
	Score     float64  `json:"score"`
	Files     []string `json:"files"`
	Synthetic bool     `json:"synthetic,omitempty"`
	// Related holds lower-ranked labels backed by exactly the same files
	Related []string `json:"related,omitempty"`
}

type candidate struct {
	label       string
	score       float64
	occurrences int
	maxDepth    int
	files       map[string]bool
}

func (c *candidate) add(file string, depth int) {
	c.occurrences++
	if depth > c.maxDepth {
		c.maxDepth = depth
	}
	c.files[file] = true
}

// Scorer ranks domain candidates for one date bucket. Results depend only
// on the set of files, never on their order.
type Scorer struct {
	cfg config.ScoringConfig
}

// NewScorer creates a scorer with the given weights
func NewScorer(cfg config.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score returns the surviving domains ranked by score desc then label asc.
// When files is non-empty and nothing survives, a single synthetic
// General Updates domain covers every file.
func (s *Scorer) Score(files []string) []Domain {
	files = uniqueSorted(files)
	if len(files) == 0 {
		return nil
	}

	candidates := make(map[string]*candidate)
	get := func(label string) *candidate {
		c, ok := candidates[label]
		if !ok {
			c = &candidate{label: label, files: make(map[string]bool)}
			candidates[label] = c
		}
		return c
	}

	termFiles := make(map[string][]string)
	fileDepth := make(map[string]int, len(files))

	for _, file := range files {
		segments := strings.Split(file, "/")
		dirs := segments[:len(segments)-1]
		fileDepth[file] = len(dirs)

		for i, seg := range dirs {
			lower := strings.ToLower(seg)
			if noiseSegments[lower] || isNumeric(lower) || len([]rune(lower)) < s.cfg.MinSegmentLength {
				continue
			}
			label := normalizeLabel(seg)
			if label == "" {
				continue
			}

			c := get(label)
			c.score += s.cfg.FolderBase
			if i >= 2 {
				c.score += s.cfg.DepthBonus
			}
			if !genericTechnical[lower] {
				c.score += s.cfg.BusinessBonus
			}
			c.add(file, i+1)
		}

		for _, term := range filenameTerms(path.Base(file), s.cfg.MinTermLength) {
			termFiles[term] = append(termFiles[term], file)
		}
	}

	for term, tf := range termFiles {
		c := get(titleWord(term))
		n := float64(len(tf))
		c.score += s.cfg.TermBase * n
		if len(tf) >= 2 {
			c.score += s.cfg.RepeatedTermBonus * n
		}
		for _, f := range tf {
			c.add(f, fileDepth[f])
		}
	}

	var domains []Domain
	for _, c := range candidates {
		final := c.score +
			float64(c.occurrences)*s.cfg.OccurrenceWeight +
			s.cfg.DepthLogWeight*math.Log(1+float64(c.maxDepth))
		if final < s.cfg.MinScore {
			continue
		}
		domains = append(domains, Domain{
			Label: c.label,
			Icon:  IconFor(c.label),
			Score: final,
			Files: sortedKeys(c.files),
		})
	}

	if len(domains) == 0 {
		return []Domain{{
			Label:     GeneralLabel,
			Icon:      GeneralIcon,
			Files:     files,
			Synthetic: true,
		}}
	}

	sort.Slice(domains, func(i, j int) bool {
		if domains[i].Score != domains[j].Score {
			return domains[i].Score > domains[j].Score
		}
		return domains[i].Label < domains[j].Label
	})

	return collapse(domains)
}

// collapse folds each domain into the first higher-ranked domain with the
// same file set, so a folder and the filename term inside it count once.
func collapse(ranked []Domain) []Domain {
	kept := make([]Domain, 0, len(ranked))
	index := make(map[string]int, len(ranked))
	for _, d := range ranked {
		key := strings.Join(d.Files, "\x00")
		if i, ok := index[key]; ok {
			kept[i].Related = append(kept[i].Related, d.Label)
			continue
		}
		index[key] = len(kept)
		kept = append(kept, d)
	}
	return kept
}

func uniqueSorted(in []string) []string {
	set := make(map[string]bool, len(in))
	for _, s := range in {
		if s != "" {
			set[s] = true
		}
	}
	return sortedKeys(set)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
