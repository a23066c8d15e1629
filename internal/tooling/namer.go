package tooling

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/enrich"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/errors"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/logging"
)

const (
	// MaxTitleCategories caps how many categories a combined title names
	MaxTitleCategories = 3

	combinedIcon   = "🧰"
	combinedSuffix = "Setup"
	kickoffPrefix  = "Project kickoff: "

	// DefaultDescribeTimeout bounds a single enrichment lookup
	DefaultDescribeTimeout = 3 * time.Second
)

// Template is a single-category phase presentation. Description takes the
// representative tool name as its only verb.
type Template struct {
	Title       string
	Icon        string
	Description string
}

// Templates is the single-category cascade
var Templates = map[Category]Template{
	CategoryFrontend:       {"Frontend Foundation", "🎨", "Built the user interface foundation with %s"},
	CategoryBackend:        {"Backend Foundation", "⚙️", "Stood up the server layer with %s"},
	CategoryDatabase:       {"Data Layer Setup", "🗄️", "Connected persistent storage with %s"},
	CategoryAuthentication: {"Authentication Setup", "🔐", "Added user authentication with %s"},
	CategoryEmail:          {"Email Delivery", "📧", "Enabled transactional email with %s"},
	CategoryPayment:        {"Payment Processing", "💳", "Integrated payment processing with %s"},
	CategoryValidation:     {"Input Validation", "✅", "Added input validation with %s"},
	CategoryTesting:        {"Testing Infrastructure", "🧪", "Established automated testing with %s"},
	CategoryBuild:          {"Build Pipeline", "🏗️", "Configured the build pipeline with %s"},
	CategoryLinting:        {"Code Quality Rules", "🔍", "Enforced code quality rules with %s"},
	CategoryFormatting:     {"Code Formatting", "✨", "Standardized code formatting with %s"},
	CategoryTypeSystem:     {"Type Safety", "📐", "Adopted static typing with %s"},
	CategoryDeployment:     {"Deployment Setup", "🚀", "Prepared deployment with %s"},
	CategoryCICD:           {"Continuous Integration", "🔄", "Automated integration checks with %s"},
	CategoryScheduler:      {"Background Jobs", "⏰", "Scheduled background work with %s"},
	CategoryFileStorage:    {"File Storage", "📁", "Added file upload and storage with %s"},
	CategoryObservability:  {"Observability", "📊", "Instrumented logging and monitoring with %s"},
}

// FallbackTemplate applies when no name matched a known category
var FallbackTemplate = Template{"Dependency Updates", "📦", "Added %s"}

// Phase is a named tooling adoption for one date bucket
type Phase struct {
	Title       string
	Icon        string
	Description string
	Tags        []string
	Categories  []Category

	// EnrichmentFailed is set when the describer was consulted and failed
	EnrichmentFailed bool
}

// Namer turns a bucket's newly-seen names into a Phase
type Namer struct {
	describer enrich.Describer
	timeout   time.Duration
	logger    *slog.Logger
}

// NamerOption configures a Namer
type NamerOption func(*Namer)

// WithDescriber enables description enrichment for the representative tool
func WithDescriber(d enrich.Describer, timeout time.Duration) NamerOption {
	return func(n *Namer) {
		n.describer = d
		if timeout > 0 {
			n.timeout = timeout
		}
	}
}

// WithLogger overrides the component logger
func WithLogger(l *slog.Logger) NamerOption {
	return func(n *Namer) { n.logger = l }
}

// NewNamer creates a namer; without WithDescriber no lookups happen
func NewNamer(opts ...NamerOption) *Namer {
	n := &Namer{
		timeout: DefaultDescribeTimeout,
		logger:  logging.Component("tooling"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Name builds the phase for names, which must already be filtered through
// the run's SeenSet. Kickoff only reframes the description.
func (n *Namer) Name(ctx context.Context, names []string, kickoff bool) (phase Phase, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.PhaseGenerationErrorf(nil, "naming phase for %v panicked: %v", names, r)
		}
	}()

	if len(names) == 0 {
		return Phase{}, errors.PhaseGenerationErrorf(nil, "no names to build a phase from")
	}

	groups := Group(names)
	active := groups.Active()

	phase = Phase{
		Tags:       append([]string(nil), names...),
		Categories: active,
	}

	var representative string

	switch {
	case len(active) >= 2:
		top := active
		if len(top) > MaxTitleCategories {
			top = top[:MaxTitleCategories]
		}
		labels := make([]string, len(top))
		parts := make([]string, len(top))
		for i, c := range top {
			labels[i] = c.String()
			parts[i] = fmt.Sprintf("%s (%s)", strings.ToLower(c.String()), strings.Join(groups[c], ", "))
		}
		phase.Title = joinTitle(labels) + " " + combinedSuffix
		phase.Icon = combinedIcon
		phase.Description = "Set up " + joinSentence(parts)
		if extra := len(active) - len(top); extra > 0 {
			phase.Description += fmt.Sprintf(" plus %d more %s", extra, plural(extra, "area", "areas"))
		}

	case len(active) == 1:
		tpl, ok := Templates[active[0]]
		if !ok {
			return Phase{}, errors.PhaseGenerationErrorf(nil, "no template for category %s", active[0])
		}
		representative = groups[active[0]][0]
		phase.Title = tpl.Title
		phase.Icon = tpl.Icon
		phase.Description = fmt.Sprintf(tpl.Description, representative)
		if extra := len(names) - 1; extra > 0 {
			phase.Description += fmt.Sprintf(" and %d more", extra)
		}

	default:
		representative = names[0]
		phase.Title = FallbackTemplate.Title
		phase.Icon = FallbackTemplate.Icon
		phase.Description = fmt.Sprintf(FallbackTemplate.Description, listNames(names, 5))
	}

	if representative != "" && n.describer != nil {
		if text, ok := n.describe(ctx, representative); ok {
			phase.Description += fmt.Sprintf(". %s: %s", representative, text)
		} else {
			phase.EnrichmentFailed = true
		}
	}

	if kickoff {
		phase.Description = kickoffPrefix + phase.Description
	}

	return phase, nil
}

func (n *Namer) describe(ctx context.Context, name string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	text, err := n.describer.Describe(ctx, name)
	if err != nil {
		n.logger.Warn("description lookup failed", "name", name, "error", err)
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	return strings.TrimSuffix(text, "."), true
}

// Fallback is the minimal event body used when naming fails for a bucket
func Fallback(names []string, kickoff bool) Phase {
	p := Phase{
		Title:       "Tooling Updates",
		Icon:        "🛠️",
		Description: "Introduced " + listNames(names, 5),
		Tags:        append([]string(nil), names...),
	}
	if kickoff {
		p.Description = kickoffPrefix + p.Description
	}
	return p
}

// joinTitle renders "A", "A & B" or "A, B & C"
func joinTitle(labels []string) string {
	switch len(labels) {
	case 0:
		return ""
	case 1:
		return labels[0]
	}
	return strings.Join(labels[:len(labels)-1], ", ") + " & " + labels[len(labels)-1]
}

func joinSentence(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}

func listNames(names []string, max int) string {
	if len(names) <= max {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(names[:max], ", "), len(names)-max)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
