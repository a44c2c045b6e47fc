package classify

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/sixarms/sixarms/internal/scanner"
	"github.com/sixarms/sixarms/internal/store"
)

// Classifier labels file changes with log categories using path patterns and
// commit message keywords. It never fails; unmatched input falls back to
// CategoryFeature, the most common kind of day.
type Classifier struct {
	rules []pathRule
}

// New creates a Classifier with the default rules.
func New() *Classifier {
	rules := defaultRules()
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return &Classifier{rules: rules}
}

// ClassifyFile returns the category for a single file path, or
// CategoryFeature when no rule matches.
func (c *Classifier) ClassifyFile(filePath string) store.LogCategory {
	lowerPath := strings.ToLower(filePath)
	baseName := path.Base(filePath)

	for _, rule := range c.rules {
		for _, seg := range rule.Segments {
			if strings.Contains(lowerPath, seg) {
				return rule.Category
			}
		}
		for _, glob := range rule.Globs {
			if matched, _ := path.Match(glob, baseName); matched {
				return rule.Category
			}
		}
	}
	return store.CategoryFeature
}

// ClassifyDay returns the category for a whole day's diff.
//
// Evaluation order:
//  1. Bugfix keywords in the commit message win outright.
//  2. Refactor keywords in the commit message win next.
//  3. Otherwise each file votes its path category, weighted by lines changed,
//     and the heaviest category is returned.
//  4. An empty diff is CategoryOther.
func (c *Classifier) ClassifyDay(files []scanner.FileChange, commitMessage string) store.LogCategory {
	lowerMsg := strings.ToLower(commitMessage)
	for _, kw := range bugfixKeywords {
		if strings.Contains(lowerMsg, kw) {
			return store.CategoryBugfix
		}
	}
	for _, kw := range refactorKeywords {
		if strings.Contains(lowerMsg, kw) {
			return store.CategoryRefactor
		}
	}

	if len(files) == 0 {
		return store.CategoryOther
	}

	weights := make(map[store.LogCategory]int)
	for _, f := range files {
		weight := f.Additions + f.Deletions
		if weight < 1 {
			weight = 1
		}
		weights[c.ClassifyFile(f.Path)] += weight
	}

	// Fixed sweep order keeps ties deterministic.
	best := store.CategoryFeature
	bestWeight := weights[store.CategoryFeature]
	for _, cat := range []store.LogCategory{
		store.CategoryTest, store.CategoryDocs, store.CategoryUI, store.CategoryChore,
	} {
		if weights[cat] > bestWeight {
			best = cat
			bestWeight = weights[cat]
		}
	}
	return best
}

// Summarize produces a one-line summary of a day's diff in place of an AI
// summary.
func Summarize(files []scanner.FileChange, totalAdditions, totalDeletions int, category store.LogCategory) string {
	noun := "files"
	if len(files) == 1 {
		noun = "file"
	}
	return fmt.Sprintf("%d %s changed (+%d/-%d), mostly %s work",
		len(files), noun, totalAdditions, totalDeletions, category)
}
