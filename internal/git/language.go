package git

import (
	"path/filepath"
	"strings"
)

var languageMap = map[string]string{
	".go":     "Go",
	".py":     "Python",
	".js":     "JavaScript",
	".jsx":    "JavaScript",
	".mjs":    "JavaScript",
	".cjs":    "JavaScript",
	".ts":     "TypeScript",
	".tsx":    "TypeScript",
	".vue":    "Vue",
	".svelte": "Svelte",
	".astro":  "Astro",
	".java":   "Java",
	".c":      "C",
	".cpp":    "C++",
	".cc":     "C++",
	".cxx":    "C++",
	".h":      "C/C++",
	".hpp":    "C++",
	".cs":     "C#",
	".rb":     "Ruby",
	".php":    "PHP",
	".rs":     "Rust",
	".swift":  "Swift",
	".kt":     "Kotlin",
	".scala":  "Scala",
	".sql":    "SQL",
	".m":      "Objective-C",
	".lua":    "Lua",
	".dart":   "Dart",
	".ex":     "Elixir",
	".exs":    "Elixir",
	".clj":    "Clojure",
	".fs":     "F#",
	".hs":     "Haskell",
}

// DetectLanguage returns the programming language based on file extension.
// ok is false for anything that is not recognizable source code.
func DetectLanguage(filePath string) (lang string, ok bool) {
	ext := strings.ToLower(filepath.Ext(filePath))
	lang, ok = languageMap[ext]
	return lang, ok
}

// IsSourceFile reports whether the path has a source code extension
func IsSourceFile(filePath string) bool {
	_, ok := DetectLanguage(filePath)
	return ok
}
