// Package classify provides a heuristic classifier that labels a day's
// changes with a log category from file paths and the latest commit message
// alone. It stands in for the AI collaborator when no API key is configured,
// so daily logs are still produced offline.
package classify

import "github.com/sixarms/sixarms/internal/store"

// pathRule maps file name globs and directory segments to a category.
// Rules are evaluated in descending priority order; the first match wins.
type pathRule struct {
	Category store.LogCategory
	Globs    []string // matched against the file's base name with path.Match
	Segments []string // matched anywhere in the lowercased path
	Priority int
}

// defaultRules returns the built-in path rules.
//
// Priority tiers:
//
//	40 - test files (naming conventions and test directories)
//	30 - documentation
//	20 - UI assets and frontend components
//	10 - build/config chore files
func defaultRules() []pathRule {
	return []pathRule{
		{
			Category: store.CategoryTest,
			Globs: []string{
				"*_test.go",
				"test_*.py",
				"*_test.py",
				"*.test.js",
				"*.test.ts",
				"*.test.tsx",
				"*.spec.js",
				"*.spec.ts",
				"*.spec.tsx",
			},
			Segments: []string{"/test/", "/tests/", "/__tests__/"},
			Priority: 40,
		},
		{
			Category: store.CategoryDocs,
			Globs:    []string{"*.md", "*.rst", "*.adoc"},
			Segments: []string{"/docs/", "/doc/"},
			Priority: 30,
		},
		{
			Category: store.CategoryUI,
			Globs: []string{
				"*.css",
				"*.scss",
				"*.html",
				"*.vue",
				"*.svelte",
				"*.tsx",
				"*.jsx",
			},
			Segments: []string{"/ui/", "/components/", "/views/", "/styles/"},
			Priority: 20,
		},
		{
			Category: store.CategoryChore,
			Globs: []string{
				"go.mod",
				"go.sum",
				"package.json",
				"package-lock.json",
				"*.lock",
				"*.yml",
				"*.yaml",
				"*.toml",
				"Makefile",
				"Dockerfile",
				".gitignore",
				".dockerignore",
				"LICENSE",
			},
			Segments: []string{"/ci/", "/.github/"},
			Priority: 10,
		},
	}
}

// bugfixKeywords in a commit message outweigh any path signal.
var bugfixKeywords = []string{
	"fix:",
	"fix(",
	"fixes ",
	"fixed ",
	"bug:",
	"bugfix",
	"hotfix",
	"patch:",
	"resolves ",
}

// refactorKeywords are checked after bugfix keywords.
var refactorKeywords = []string{
	"refactor",
	"rework",
	"simplify",
	"clean up",
	"cleanup",
}
