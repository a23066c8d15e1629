package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/errors"
)

// gitDiff wraps hunk lines in the headers git show emits for package.json
func gitDiff(hunk ...string) string {
	header := "diff --git a/package.json b/package.json\n" +
		"index 1111111..2222222 100644\n" +
		"--- a/package.json\n" +
		"+++ b/package.json\n"
	return header + strings.Join(hunk, "\n") + "\n"
}

func TestExtractNewDependencies(t *testing.T) {
	d := gitDiff(
		"@@ -1,12 +1,16 @@",
		" {",
		"   \"name\": \"shop\",",
		"-  \"version\": \"1.0.0\",",
		"+  \"version\": \"1.1.0\",",
		"   \"scripts\": {",
		"+    \"start\": \"node server.js\",",
		"     \"test\": \"jest\"",
		"   },",
		"   \"dependencies\": {",
		"+    \"react\": \"^18.2.0\",",
		"+    \"express\": \"^4.18.2\",",
		"     \"lodash\": \"^4.17.21\"",
		"   },",
		"   \"devDependencies\": {",
		"+    \"eslint\": \"^8.0.0\"",
		"   }",
		" }",
	)

	ex := NewPackageJSONScanner().Extract(d)

	assert.Equal(t, []string{"react", "express", "eslint"}, ex.Names)
	assert.Zero(t, ex.Skipped)
	assert.False(t, ex.Malformed)
}

func TestExtractIgnoresRemovedAndContextLines(t *testing.T) {
	d := gitDiff(
		"@@ -1,6 +1,6 @@",
		" {",
		"   \"dependencies\": {",
		"-    \"moment\": \"^2.29.0\",",
		"+    \"dayjs\": \"^1.11.0\",",
		"     \"axios\": \"^1.0.0\"",
		"   }",
		" }",
	)

	ex := NewPackageJSONScanner().Extract(d)
	assert.Equal(t, []string{"dayjs"}, ex.Names)
}

func TestExtractVersionBumpLooksLikeAddition(t *testing.T) {
	d := gitDiff(
		"@@ -1,5 +1,5 @@",
		" {",
		"   \"dependencies\": {",
		"-    \"react\": \"^17.0.0\"",
		"+    \"react\": \"^18.0.0\"",
		"   }",
		" }",
	)

	ex := NewPackageJSONScanner().Extract(d)
	assert.Equal(t, []string{"react"}, ex.Names, "the scan cannot tell a bump from an addition")
}

func TestExtractMetadataKeysOutsideAndInsideSections(t *testing.T) {
	d := gitDiff(
		"@@ -0,0 +1,9 @@",
		"+{",
		"+  \"name\": \"app\",",
		"+  \"version\": \"0.1.0\",",
		"+  \"private\": true,",
		"+  \"peerDependencies\": {",
		"+    \"version\": \"1\",",
		"+    \"vue\": \"^3.0.0\"",
		"+  }",
		"+}",
	)

	ex := NewPackageJSONScanner().Extract(d)
	assert.Equal(t, []string{"vue"}, ex.Names)
}

func TestExtractSiblingKeyClosesSection(t *testing.T) {
	// closing brace missing from view; the sibling top-level key must end
	// the dependency section
	d := gitDiff(
		"@@ -1,4 +1,6 @@",
		" {",
		"   \"dependencies\": {",
		"+    \"zod\": \"^3.0.0\",",
		"   \"scripts\": {",
		"+    \"lint\": \"eslint .\"",
		" }",
	)

	ex := NewPackageJSONScanner().Extract(d)
	assert.Equal(t, []string{"zod"}, ex.Names)
}

func TestExtractUnindentedManifest(t *testing.T) {
	d := gitDiff(
		"@@ -1,7 +1,9 @@",
		" {",
		" \"dependencies\": {",
		"+\"react\": \"1\",",
		" \"vue\": \"3\"",
		" },",
		" \"devDependencies\": {",
		"+\"vitest\": \"1\"",
		" }",
		" }",
	)

	ex := NewPackageJSONScanner().Extract(d)
	assert.Equal(t, []string{"react", "vitest"}, ex.Names)
	assert.Zero(t, ex.Skipped)
}

func TestExtractMixedIndentation(t *testing.T) {
	d := gitDiff(
		"@@ -1,5 +1,6 @@",
		" {",
		" \t\"dependencies\": {",
		"+  \"axios\": \"^1.0.0\",",
		"  \t\t\"pg\": \"^8.0.0\"",
		" \t}",
		" }",
	)

	ex := NewPackageJSONScanner().Extract(d)
	assert.Equal(t, []string{"axios"}, ex.Names)
}

func TestExtractNestedObjectKeysAreNotDependencies(t *testing.T) {
	d := gitDiff(
		"@@ -1,4 +1,9 @@",
		" {",
		"   \"dependencies\": {",
		"+    \"local-lib\": {",
		"+      \"version\": \"1.0.0\",",
		"+      \"resolved\": \"file:../lib\"",
		"+    },",
		"+    \"zod\": \"^3.0.0\"",
		"   }",
		" }",
	)

	ex := NewPackageJSONScanner().Extract(d)
	assert.Equal(t, []string{"local-lib", "zod"}, ex.Names)
	assert.Zero(t, ex.Skipped)
}

func TestExtractInlineEmptySectionDoesNotOpen(t *testing.T) {
	d := gitDiff(
		"@@ -1,2 +1,4 @@",
		" {",
		"+  \"dependencies\": {},",
		"+  \"author\": \"me\"",
		" }",
	)

	ex := NewPackageJSONScanner().Extract(d)
	assert.Empty(t, ex.Names)
}

func TestExtractCountsSkippedLines(t *testing.T) {
	d := gitDiff(
		"@@ -1,4 +1,6 @@",
		" {",
		"   \"dependencies\": {",
		"+    react: ^18",
		"+    \"next\": \"14.0.0\"",
		"   }",
		" }",
	)

	ex := NewPackageJSONScanner().Extract(d)
	assert.Equal(t, []string{"next"}, ex.Names)
	assert.Equal(t, 1, ex.Skipped)
}

func TestExtractDeduplicatesAcrossHunks(t *testing.T) {
	d := gitDiff(
		"@@ -1,4 +1,5 @@",
		" {",
		"   \"dependencies\": {",
		"+    \"stripe\": \"^14.0.0\",",
		"     \"pg\": \"^8.0.0\"",
		"   },",
		"@@ -20,2 +21,4 @@",
		"   \"devDependencies\": {",
		"+    \"stripe\": \"^14.0.0\",",
		"+    \"jest\": \"^29.0.0\"",
		"   }",
	)

	ex := NewPackageJSONScanner().Extract(d)
	assert.Equal(t, []string{"stripe", "jest"}, ex.Names)
}

func TestExtractHunkWithoutHeaderYieldsNothing(t *testing.T) {
	// with little context a hunk may not show its section header
	d := gitDiff(
		"@@ -10,2 +10,3 @@",
		"     \"axios\": \"^1.0.0\",",
		"+    \"zod\": \"^3.0.0\",",
		"     \"pg\": \"^8.0.0\"",
	)

	ex := NewPackageJSONScanner().Extract(d)
	assert.Empty(t, ex.Names)
}

func TestExtractMalformedDiffFallsBackToRawScan(t *testing.T) {
	raw := "@@ broken header\n" +
		"   \"dependencies\": {\n" +
		"+    \"hono\": \"^4.0.0\"\n" +
		"   }\n"

	ex := NewPackageJSONScanner().Extract(raw)
	require.True(t, ex.Malformed || len(ex.Names) > 0)
	assert.Equal(t, []string{"hono"}, ex.Names)
	if ex.Malformed {
		assert.True(t, errors.IsType(ex.Err, errors.ErrorTypeParse))
	}
}

func TestExtractEmptyDiff(t *testing.T) {
	ex := NewPackageJSONScanner().Extract("")
	assert.Empty(t, ex.Names)
	assert.False(t, ex.Malformed)
}
