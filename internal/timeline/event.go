// Package timeline aggregates per-commit detections into date buckets and
// emits the feature and tooling event streams.
package timeline

// Kind identifies which stream an event belongs to
type Kind string

const (
	KindFeature Kind = "feature"
	KindTooling Kind = "tooling"
)

// DateLayout is the calendar-day format of Event.Date
const DateLayout = "2006-01-02"

// Event is one dated timeline record
type Event struct {
	Date        string   `json:"date" yaml:"date"`
	Title       string   `json:"title" yaml:"title"`
	Icon        string   `json:"icon" yaml:"icon"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags" yaml:"tags"`
	Kind        Kind     `json:"kind" yaml:"kind"`
}

// Stats records what a run absorbed. Only repository failures abort a
// run; everything counted here was recovered locally.
type Stats struct {
	Commits            int `json:"commits" yaml:"commits"`
	Buckets            int `json:"buckets" yaml:"buckets"`
	QueryErrors        int `json:"query_errors" yaml:"query_errors"`
	ParseErrors        int `json:"parse_errors" yaml:"parse_errors"`
	PhaseErrors        int `json:"phase_errors" yaml:"phase_errors"`
	EnrichmentFailures int `json:"enrichment_failures" yaml:"enrichment_failures"`
}

// Result holds both streams, each ordered by non-decreasing date
type Result struct {
	Repository string  `json:"repository" yaml:"repository"`
	Features   []Event `json:"features" yaml:"features"`
	Tooling    []Event `json:"tooling" yaml:"tooling"`
	Stats      Stats   `json:"stats" yaml:"stats"`
}

// Events returns both streams merged by date, features first within a day
func (r *Result) Events() []Event {
	out := make([]Event, 0, len(r.Features)+len(r.Tooling))
	i, j := 0, 0
	for i < len(r.Features) || j < len(r.Tooling) {
		switch {
		case j >= len(r.Tooling):
			out = append(out, r.Features[i])
			i++
		case i >= len(r.Features):
			out = append(out, r.Tooling[j])
			j++
		case r.Features[i].Date <= r.Tooling[j].Date:
			out = append(out, r.Features[i])
			i++
		default:
			out = append(out, r.Tooling[j])
			j++
		}
	}
	return out
}
