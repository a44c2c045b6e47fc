package scanner

import (
	"fmt"
	"strconv"
	"strings"
)

// parseNumstat parses git numstat output lines of the form
// "additions<TAB>deletions<TAB>path" into FileChange records.
//
// Only the first two whitespace-delimited tokens are numeric; the remainder,
// rejoined, is the path, so paths containing spaces survive. Binary files
// report "-" for both counts and parse as 0. Lines with fewer than three
// tokens are dropped.
func parseNumstat(out string) []FileChange {
	var files []FileChange
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 3 {
			continue
		}

		additions, err := strconv.Atoi(parts[0])
		if err != nil {
			additions = 0
		}
		deletions, err := strconv.Atoi(parts[1])
		if err != nil {
			deletions = 0
		}

		files = append(files, FileChange{
			Path:      strings.Join(parts[2:], " "),
			Additions: additions,
			Deletions: deletions,
		})
	}
	return files
}

// FormatChanges renders file changes one per line with a [+A/-D] indicator,
// omitting zero counts.
func FormatChanges(files []FileChange) string {
	lines := make([]string, 0, len(files))
	for _, f := range files {
		var indicator string
		switch {
		case f.Additions > 0 && f.Deletions > 0:
			indicator = fmt.Sprintf("[+%d/-%d]", f.Additions, f.Deletions)
		case f.Additions > 0:
			indicator = fmt.Sprintf("[+%d]", f.Additions)
		case f.Deletions > 0:
			indicator = fmt.Sprintf("[-%d]", f.Deletions)
		}
		lines = append(lines, strings.TrimSpace(indicator+" "+f.Path))
	}
	return strings.Join(lines, "\n")
}
