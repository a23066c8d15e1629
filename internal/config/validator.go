package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ValidationResult holds validation results
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// AddError adds an error to the validation result
func (vr *ValidationResult) AddError(format string, args ...interface{}) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, fmt.Sprintf(format, args...))
}

// AddWarning adds a warning to the validation result
func (vr *ValidationResult) AddWarning(format string, args ...interface{}) {
	vr.Warnings = append(vr.Warnings, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any errors
func (vr *ValidationResult) HasErrors() bool {
	return !vr.Valid || len(vr.Errors) > 0
}

// Error returns a formatted error message
func (vr *ValidationResult) Error() string {
	if !vr.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Configuration validation failed:\n")
	for _, err := range vr.Errors {
		sb.WriteString(fmt.Sprintf("  ❌ %s\n", err))
	}

	if len(vr.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, warn := range vr.Warnings {
			sb.WriteString(fmt.Sprintf("  ⚠️  %s\n", warn))
		}
	}

	return sb.String()
}

// Validate checks the configuration for values the engine cannot run with
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{Valid: true}

	if c.Repo.MaxCommits <= 0 {
		result.AddError("repo.max_commits must be positive (got %d)", c.Repo.MaxCommits)
	}
	if strings.TrimSpace(c.Repo.Manifest) == "" {
		result.AddError("repo.manifest must name the dependency manifest (e.g. package.json)")
	}
	if _, err := time.LoadLocation(c.Repo.Timezone); err != nil {
		result.AddError("repo.timezone %q is not a known location: %v", c.Repo.Timezone, err)
	}
	if c.Repo.DiffContext < 3 {
		result.AddWarning("repo.diff_context %d is small; dependency sections may be cut from hunks", c.Repo.DiffContext)
	}

	c.validateScoring(result)
	c.validateEnrich(result)
	c.validateStorage(result)

	return result
}

func (c *Config) validateScoring(result *ValidationResult) {
	s := c.Scoring
	if s.MinScore < 0 {
		result.AddError("scoring.min_score must not be negative")
	}
	if s.MinTermLength < 1 || s.MinSegmentLength < 1 {
		result.AddError("scoring.min_term_length and scoring.min_segment_length must be at least 1")
	}
	if s.MaxFeatureEvents < 1 {
		result.AddError("scoring.max_feature_events must be at least 1")
	}
}

func (c *Config) validateEnrich(result *ValidationResult) {
	if !c.Enrich.Enabled {
		return
	}
	u, err := url.Parse(c.Enrich.RegistryURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		result.AddError("enrich.registry_url %q is not a valid URL", c.Enrich.RegistryURL)
	}
	if c.Enrich.RateLimit <= 0 {
		result.AddError("enrich.rate_limit must be positive")
	}
	if c.Enrich.Timeout <= 0 {
		result.AddWarning("enrich.timeout not set; lookups fall back to the client default")
	}
	if c.Enrich.CachePath == "" {
		result.AddWarning("enrich.cache_path empty; descriptions will not be cached")
	}
}

func (c *Config) validateStorage(result *ValidationResult) {
	switch c.Storage.Type {
	case "sqlite":
		if c.Storage.LocalPath == "" {
			result.AddError("storage.local_path required for sqlite storage")
		}
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			result.AddError("storage.postgres_dsn required for postgres storage")
		}
	case "none", "":
	default:
		result.AddError("storage.type %q must be sqlite, postgres or none", c.Storage.Type)
	}
}
