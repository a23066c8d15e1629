package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/timeline"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// resolveFormat picks text for an interactive stdout and JSON for pipes
func resolveFormat(requested string) string {
	if requested != "" {
		return strings.ToLower(requested)
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return formatText
	}
	return formatJSON
}

func render(w io.Writer, format string, v interface{}) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case formatText:
		if result, ok := v.(*timeline.Result); ok {
			renderText(w, result)
			return nil
		}
		return render(w, formatYAML, v)
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

func renderText(w io.Writer, r *timeline.Result) {
	if r.Repository != "" {
		fmt.Fprintf(w, "📜 Timeline for %s\n", r.Repository)
		fmt.Fprintln(w, strings.Repeat("═", 40))
	}

	events := r.Events()
	if len(events) == 0 {
		fmt.Fprintln(w, "No features or tooling changes detected.")
	}

	lastDate := ""
	for _, ev := range events {
		if ev.Date != lastDate {
			fmt.Fprintf(w, "\n%s\n", ev.Date)
			lastDate = ev.Date
		}
		fmt.Fprintf(w, "  %s %s [%s]\n", ev.Icon, ev.Title, ev.Kind)
		if ev.Description != "" {
			fmt.Fprintf(w, "     %s\n", ev.Description)
		}
		if len(ev.Tags) > 0 {
			fmt.Fprintf(w, "     tags: %s\n", strings.Join(ev.Tags, ", "))
		}
	}

	s := r.Stats
	fmt.Fprintf(w, "\n%d commits, %d days, %d features, %d tooling events\n",
		s.Commits, s.Buckets, len(r.Features), len(r.Tooling))
	if s.QueryErrors+s.ParseErrors+s.PhaseErrors+s.EnrichmentFailures > 0 {
		fmt.Fprintf(w, "⚠️  recovered: %d query, %d parse, %d phase, %d enrichment\n",
			s.QueryErrors, s.ParseErrors, s.PhaseErrors, s.EnrichmentFailures)
	}
}
