package tooling

import (
	"regexp"
)

// ToolRule maps a configuration file convention to the tool it implies
type ToolRule struct {
	Tool    string
	Pattern *regexp.Regexp
}

// ToolRules is evaluated in order against slash-separated paths; the first
// matching rule names the file's tool.
var ToolRules = []ToolRule{
	{"GitHub Actions", regexp.MustCompile(`^\.github/workflows/[^/]+\.ya?ml$`)},
	{"GitLab CI", regexp.MustCompile(`(^|/)\.gitlab-ci\.ya?ml$`)},
	{"CircleCI", regexp.MustCompile(`^\.circleci/config\.ya?ml$`)},
	{"Jenkins", regexp.MustCompile(`(^|/)Jenkinsfile$`)},
	{"Travis CI", regexp.MustCompile(`(^|/)\.travis\.ya?ml$`)},
	{"Azure Pipelines", regexp.MustCompile(`(^|/)azure-pipelines\.ya?ml$`)},
	{"Docker Compose", regexp.MustCompile(`(^|/)(docker-)?compose(\.[\w-]+)?\.ya?ml$`)},
	{"Docker", regexp.MustCompile(`(^|/)(Dockerfile(\.[\w-]+)?|[\w-]+\.Dockerfile|\.dockerignore)$`)},
	{"ESLint", regexp.MustCompile(`(^|/)(\.eslintrc(\.(js|cjs|json|ya?ml))?|eslint\.config\.(js|mjs|cjs|ts))$`)},
	{"Prettier", regexp.MustCompile(`(^|/)(\.prettierrc(\.(js|cjs|json|ya?ml|toml))?|prettier\.config\.(js|cjs|mjs))$`)},
	{"Stylelint", regexp.MustCompile(`(^|/)(\.stylelintrc(\.\w+)?|stylelint\.config\.\w+)$`)},
	{"TypeScript", regexp.MustCompile(`(^|/)tsconfig(\.[\w-]+)?\.json$`)},
	{"Jest", regexp.MustCompile(`(^|/)jest\.config\.\w+$`)},
	{"Vitest", regexp.MustCompile(`(^|/)vitest\.config\.\w+$`)},
	{"Playwright", regexp.MustCompile(`(^|/)playwright\.config\.\w+$`)},
	{"Cypress", regexp.MustCompile(`(^|/)(cypress\.config\.\w+|cypress\.json)$`)},
	{"Webpack", regexp.MustCompile(`(^|/)webpack\.config(\.[\w-]+)?\.(js|cjs|mjs|ts)$`)},
	{"Vite", regexp.MustCompile(`(^|/)vite\.config\.(js|cjs|mjs|ts|mts)$`)},
	{"Rollup", regexp.MustCompile(`(^|/)rollup\.config\.(js|cjs|mjs|ts)$`)},
	{"Babel", regexp.MustCompile(`(^|/)(\.babelrc(\.\w+)?|babel\.config\.(js|cjs|mjs|json))$`)},
	{"Tailwind CSS", regexp.MustCompile(`(^|/)tailwind\.config\.(js|cjs|mjs|ts)$`)},
	{"PostCSS", regexp.MustCompile(`(^|/)(postcss\.config\.(js|cjs|mjs|ts)|\.postcssrc(\.\w+)?)$`)},
	{"Vercel", regexp.MustCompile(`(^|/)vercel\.json$`)},
	{"Netlify", regexp.MustCompile(`(^|/)netlify\.toml$`)},
	{"Fly.io", regexp.MustCompile(`(^|/)fly\.toml$`)},
	{"Render", regexp.MustCompile(`(^|/)render\.ya?ml$`)},
	{"Heroku", regexp.MustCompile(`(^|/)Procfile$`)},
	{"Serverless", regexp.MustCompile(`(^|/)serverless\.ya?ml$`)},
	{"golangci-lint", regexp.MustCompile(`(^|/)\.golangci\.(ya?ml|toml|json)$`)},
	{"pre-commit", regexp.MustCompile(`(^|/)\.pre-commit-config\.ya?ml$`)},
	{"Husky", regexp.MustCompile(`^\.husky/`)},
	{"EditorConfig", regexp.MustCompile(`(^|/)\.editorconfig$`)},
}

// Detector maps changed paths to configuration-driven tools
type Detector struct {
	rules []ToolRule
}

// NewDetector returns a detector over ToolRules
func NewDetector() *Detector {
	return &Detector{rules: ToolRules}
}

// Match returns the tool implied by a single path
func (d *Detector) Match(path string) (string, bool) {
	for _, rule := range d.rules {
		if rule.Pattern.MatchString(path) {
			return rule.Tool, true
		}
	}
	return "", false
}

// Detect returns the de-duplicated tools implied by paths, in the order
// they were first matched. Paths matching no rule contribute nothing.
func (d *Detector) Detect(paths []string) []string {
	var tools []string
	seen := make(map[string]bool)

	for _, p := range paths {
		tool, ok := d.Match(p)
		if !ok || seen[tool] {
			continue
		}
		seen[tool] = true
		tools = append(tools, tool)
	}

	return tools
}
