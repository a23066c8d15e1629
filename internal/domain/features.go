package domain

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// Feature is the presentation of one feature-stream event
type Feature struct {
	Title       string
	Icon        string
	Description string
	Tags        []string
	Domains     []string
}

// Synthesizer turns ranked domains into feature events
type Synthesizer struct {
	maxEvents     int
	minTermLength int
}

// NewSynthesizer creates a synthesizer. maxEvents caps the split when a
// bucket has three or more domains.
func NewSynthesizer(maxEvents, minTermLength int) *Synthesizer {
	if maxEvents <= 0 {
		maxEvents = 3
	}
	return &Synthesizer{maxEvents: maxEvents, minTermLength: minTermLength}
}

// Features builds the feature events for one bucket's ranked domains
func (s *Synthesizer) Features(domains []Domain) []Feature {
	switch {
	case len(domains) == 0:
		return nil

	case len(domains) >= 3:
		top := domains
		if len(top) > s.maxEvents {
			top = top[:s.maxEvents]
		}
		features := make([]Feature, 0, len(top))
		for _, d := range top {
			features = append(features, Feature{
				Title:       s.title(d),
				Icon:        d.Icon,
				Description: describe(d, d.Related),
				Tags:        Tags(d.Files),
				Domains:     append([]string{d.Label}, d.Related...),
			})
		}
		return features
	}

	primary := domains[0]
	files := primary.Files
	secondary := append([]string(nil), primary.Related...)

	if len(domains) == 2 {
		files = append(append([]string(nil), files...), domains[1].Files...)
		secondary = append(secondary, domains[1].Label)
	}

	return []Feature{{
		Title:       s.title(primary),
		Icon:        primary.Icon,
		Description: describe(primary, secondary),
		Tags:        Tags(files),
		Domains:     append([]string{primary.Label}, secondary...),
	}}
}

func describe(d Domain, secondary []string) string {
	desc := fmt.Sprintf("Work on %s across %s", d.Label, countFiles(len(d.Files)))
	if len(secondary) > 0 {
		desc += ", alongside " + joinLabels(secondary)
	}
	return desc
}

func joinLabels(labels []string) string {
	if len(labels) == 1 {
		return labels[0]
	}
	return strings.Join(labels[:len(labels)-1], ", ") + " and " + labels[len(labels)-1]
}

// title prefers business terms recovered from the domain's filenames and
// falls back to the decorated label.
func (s *Synthesizer) title(d Domain) string {
	if d.Synthetic {
		return d.Label
	}

	counts := make(map[string]int)
	for _, f := range d.Files {
		for _, term := range filenameTerms(path.Base(f), s.minTermLength) {
			counts[term]++
		}
	}
	if len(counts) == 0 {
		return d.Label + " Updates"
	}

	terms := make([]string, 0, len(counts))
	for t := range counts {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})

	title := titleWord(terms[0])
	// a second term only when it is as strong as the first
	if len(terms) > 1 && counts[terms[1]] == counts[terms[0]] {
		title += " & " + titleWord(terms[1])
	}
	return title + " Feature"
}

// Tags are leaf filenames without extension, de-duplicated and sorted
func Tags(files []string) []string {
	set := make(map[string]bool, len(files))
	for _, f := range files {
		base := path.Base(f)
		if i := strings.LastIndex(base, "."); i > 0 {
			base = base[:i]
		}
		set[base] = true
	}
	return sortedKeys(set)
}

func countFiles(n int) string {
	if n == 1 {
		return "1 file"
	}
	return fmt.Sprintf("%d files", n)
}
