package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sixarms/sixarms/internal/scanner"
	"github.com/sixarms/sixarms/internal/store"
)

// Analysis is the structured result of analyzing one project's daily work.
type Analysis struct {
	Summary        string   `json:"summary"`
	Category       string   `json:"category"`
	Insights       []string `json:"insights"`
	SuggestedTodos []string `json:"suggested_todos"`
}

const analyzeSystemPrompt = "You are a development progress assistant. " +
	"You analyze git change statistics and report concise, factual summaries."

// Analyzer turns diff results into classifications and summaries using a
// chat client.
type Analyzer struct{}

// NewAnalyzer returns an Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// AnalyzeDailyWork asks the client to summarize and classify a project's
// diff for the day. The response is expected to be JSON; a malformed or
// non-JSON response degrades to the raw text as summary with category
// "other" rather than an error. The category in the returned Analysis is
// normalized through the closed category set.
func (a *Analyzer) AnalyzeDailyWork(ctx context.Context, client Client, project store.Project, diff *scanner.DiffResult) (*Analysis, error) {
	var files strings.Builder
	for _, f := range diff.Files {
		fmt.Fprintf(&files, "%s (+%d/-%d)\n", f.Path, f.Additions, f.Deletions)
	}

	prompt := fmt.Sprintf(`Analyze today's development progress for this project.

Project: %s
Changed files:
%s
Total: %d lines added, %d lines deleted.

Provide:
1. A one-sentence summary of the work
2. A category (feature/bugfix/refactor/ui/docs/test/chore/other)
3. 2-3 key insights
4. Suggested follow-up tasks, if any

Reply in JSON: {"summary": "...", "category": "...", "insights": ["..."], "suggested_todos": ["..."]}`,
		project.Name, files.String(), diff.TotalAdditions, diff.TotalDeletions)

	messages := []Message{
		{Role: "system", Content: analyzeSystemPrompt},
		{Role: "user", Content: prompt},
	}

	response, err := client.Chat(ctx, messages)
	if err != nil {
		return nil, err
	}

	return ParseAnalysis(response), nil
}

// ParseAnalysis parses a model response into an Analysis, tolerating
// non-JSON output by treating the whole response as the summary.
func ParseAnalysis(response string) *Analysis {
	var analysis Analysis
	if err := json.Unmarshal([]byte(extractJSON(response)), &analysis); err != nil || analysis.Summary == "" {
		return &Analysis{
			Summary:  strings.TrimSpace(response),
			Category: string(store.CategoryOther),
		}
	}
	analysis.Category = string(store.LogCategoryFromString(analysis.Category))
	return &analysis
}

// extractJSON strips markdown code fences and surrounding prose so that a
// fenced or prefixed JSON object still parses.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
