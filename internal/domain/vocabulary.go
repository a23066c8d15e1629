package domain

import (
	"strings"
	"unicode"
)

// noiseSegments are technical layer names that say nothing about the
// business capability; directory segments on this list are skipped.
var noiseSegments = toSet(
	"src", "source", "sources", "lib", "libs", "app", "apps", "pkg", "packages",
	"internal", "cmd", "components", "component", "pages", "page", "views", "view",
	"screens", "screen", "controllers", "controller", "services", "service",
	"models", "model", "utils", "util", "helpers", "helper", "common", "shared",
	"core", "api", "apis", "routes", "route", "router", "routers", "handlers",
	"handler", "middleware", "middlewares", "hooks", "hook", "context", "contexts",
	"store", "stores", "reducers", "actions", "types", "interfaces", "constants",
	"config", "configs", "assets", "static", "public", "styles", "css", "images",
	"img", "icons", "fonts", "server", "client", "frontend", "backend", "web",
	"main", "modules", "module", "features", "feature", "containers", "providers",
	"resolvers", "schemas", "dto", "dtos", "entities", "repositories", "repository",
	"templates", "partials", "plugins", "include", "includes", "js", "ts", "base",
	"misc", "general", "default", "index", "v1", "v2", "v3",
)

// genericTechnical segments survive as candidates but earn no business bonus
var genericTechnical = toSet(
	"data", "database", "db", "ui", "layout", "layouts", "cache", "queue", "queues",
	"jobs", "job", "workers", "worker", "cli", "scripts", "migrations", "seeds",
	"graphql", "http", "rest", "socket", "sockets", "events", "tasks", "logging",
	"logger", "validation", "validators", "i18n", "locales", "theme", "lambda",
	"functions", "tools", "widgets", "elements", "forms",
)

// roleSuffixes are trailing filename words naming a technical role
var roleSuffixes = toSet(
	"controller", "controllers", "service", "services", "model", "models",
	"handler", "handlers", "repository", "repo", "manager", "provider",
	"component", "view", "page", "screen", "router", "routes", "route", "store",
	"slice", "helper", "helpers", "util", "utils", "schema", "dto", "entity",
	"middleware", "resolver", "factory", "adapter", "client", "api", "hook",
	"context", "reducer", "container", "module", "config", "types", "type",
	"test", "spec", "impl",
)

// genericTerms are filename words that never become business terms
var genericTerms = toSet(
	"index", "main", "app", "use", "get", "set", "new", "old", "tmp", "temp",
	"init", "setup", "base", "default", "common", "shared", "core", "utils",
	"constants", "global", "globals", "style", "styles", "mock", "mocks",
	"the", "and", "for", "with", "from", "list", "item", "items", "form",
	"button", "modal", "card", "table", "input", "layout", "wrapper", "root",
)

func toSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// splitWords breaks an identifier on separators, case and digit boundaries.
// An upper-case run followed by a lower-case letter starts a new word, so
// "HTTPServer" splits as [HTTP Server].
func splitWords(s string) []string {
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(current) > 0 {
			prev := runes[i-1]
			switch {
			case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
				flush()
			case unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				flush()
			case unicode.IsDigit(r) != unicode.IsDigit(prev):
				flush()
			}
		}
		current = append(current, r)
	}
	flush()

	return words
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	runes := []rune(strings.ToLower(w))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// normalizeLabel turns "user-profile" or "userProfile" into "User Profile"
func normalizeLabel(segment string) string {
	words := splitWords(segment)
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// stripExtension removes the final extension only; "user.service.ts"
// keeps "user.service" so both words reach splitWords.
func stripExtension(base string) string {
	if i := strings.LastIndex(base, "."); i > 0 {
		return base[:i]
	}
	return base
}

// filenameTerms returns the lower-cased business terms of a leaf filename
func filenameTerms(base string, minLength int) []string {
	words := splitWords(stripExtension(base))

	for len(words) > 0 && roleSuffixes[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}

	var terms []string
	seen := make(map[string]bool)
	for _, w := range words {
		lw := strings.ToLower(w)
		if len([]rune(lw)) < minLength || isNumeric(lw) || seen[lw] {
			continue
		}
		if genericTerms[lw] || noiseSegments[lw] || roleSuffixes[lw] || genericTechnical[lw] {
			continue
		}
		seen[lw] = true
		terms = append(terms, lw)
	}
	return terms
}
