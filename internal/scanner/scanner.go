// Package scanner invokes the git CLI as a subprocess and parses its text
// output into typed change records. Git's output is treated as an untrusted
// stream; paths and date parameters are validated before any subprocess is
// spawned, and commands are always built as argument vectors, never shell
// strings.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Sentinel errors for pre-subprocess validation failures.
var (
	ErrInvalidRepo     = errors.New("invalid repository path")
	ErrInvalidDateSpec = errors.New("invalid date parameter")
)

// ScanError wraps a git subprocess failure: a spawn error or non-zero exit.
type ScanError struct {
	Op  string // the git operation that failed, e.g. "log", "tag"
	Err error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("git %s: %v", e.Op, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// DiffResult is one scan's output for one repository over a time window.
type DiffResult struct {
	ProjectID      string
	Window         string
	Files          []FileChange
	TotalAdditions int
	TotalDeletions int
}

// FileChange is one file's additions/deletions within a diff.
type FileChange struct {
	Path      string
	Additions int
	Deletions int
}

// Tag is a git tag with its commit info, as parsed from git's tag listing.
type Tag struct {
	Name       string
	CommitHash string
	Date       string // ISO-8601
	Message    string
}

// Scanner runs git queries against local repositories.
type Scanner struct {
	gitBin string
}

// New returns a Scanner that invokes the given git binary,
// or "git" from PATH when empty.
func New(gitBin string) *Scanner {
	if gitBin == "" {
		gitBin = "git"
	}
	return &Scanner{gitBin: gitBin}
}

// maxPathLen bounds canonical paths; anything longer is rejected outright.
const maxPathLen = 4096

// pathMetaChars are shell metacharacters that must never appear in a path
// handed to a subprocess, even with argv invocation.
const pathMetaChars = "`$|&;<>(){}[]!\n\r"

// ValidatePath checks that path exists, is a directory, canonicalizes without
// exceeding a reasonable length, and contains no shell metacharacters after
// canonicalization. It returns the canonical path or ErrInvalidRepo.
func (s *Scanner) ValidatePath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s does not exist", ErrInvalidRepo, path)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInvalidRepo, path)
	}

	canonical, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("%w: resolve %s: %v", ErrInvalidRepo, path, err)
	}
	canonical, err = filepath.Abs(canonical)
	if err != nil {
		return "", fmt.Errorf("%w: absolute %s: %v", ErrInvalidRepo, path, err)
	}

	if len(canonical) > maxPathLen {
		return "", fmt.Errorf("%w: path too long", ErrInvalidRepo)
	}
	if i := strings.IndexAny(canonical, pathMetaChars); i >= 0 {
		return "", fmt.Errorf("%w: path contains invalid character %q", ErrInvalidRepo, canonical[i])
	}

	return canonical, nil
}

// dateSpecPatterns is the closed set of date forms accepted without further
// scrutiny: absolute dates and the relative tokens git understands.
var dateSpecPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`),
	regexp.MustCompile(`^midnight$`),
	regexp.MustCompile(`^today$`),
	regexp.MustCompile(`^yesterday$`),
	regexp.MustCompile(`^\d+ (day|week|month|year)s? ago$`),
}

// dateMetaChars mirror pathMetaChars minus brackets, which legitimately do
// not occur in any git-understood date.
const dateMetaChars = "`$|&;<>(){}!\n\r"

// ValidateDateSpec checks a --since/--until parameter. Known absolute and
// relative forms pass; anything else passes only if it is short and free of
// shell metacharacters (bounded trust in git's own date parser).
func (s *Scanner) ValidateDateSpec(spec string) error {
	for _, re := range dateSpecPatterns {
		if re.MatchString(spec) {
			return nil
		}
	}

	if i := strings.IndexAny(spec, dateMetaChars); i >= 0 {
		return fmt.Errorf("%w: contains invalid character %q", ErrInvalidDateSpec, spec[i])
	}
	if len(spec) > 50 {
		return fmt.Errorf("%w: too long", ErrInvalidDateSpec)
	}
	return nil
}

// IsRepo reports whether path contains a .git metadata directory.
// No subprocess is invoked.
func (s *Scanner) IsRepo(path string) bool {
	_, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil
}

// run executes git with the given args in dir and returns its stdout.
// Any spawn failure or non-zero exit yields a *ScanError.
func (s *Scanner) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, s.gitBin, args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			err = fmt.Errorf("%v: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", &ScanError{Op: args[0], Err: err}
	}
	return string(out), nil
}

// validateRepo runs path validation plus the repository check shared by every
// git query.
func (s *Scanner) validateRepo(path string) (string, error) {
	safe, err := s.ValidatePath(path)
	if err != nil {
		return "", err
	}
	if !s.IsRepo(safe) {
		return "", fmt.Errorf("%w: %s is not a git repository", ErrInvalidRepo, safe)
	}
	return safe, nil
}

// TodayDiff returns per-file change stats for non-merge commits since
// midnight local time.
func (s *Scanner) TodayDiff(ctx context.Context, path string) (*DiffResult, error) {
	return s.DiffSince(ctx, path, "midnight", "")
}

// DiffSince returns per-file change stats for non-merge commits after since
// and (optionally) before until. Both date parameters are validated before
// the subprocess runs.
func (s *Scanner) DiffSince(ctx context.Context, path, since, until string) (*DiffResult, error) {
	safe, err := s.validateRepo(path)
	if err != nil {
		return nil, err
	}
	if err := s.ValidateDateSpec(since); err != nil {
		return nil, err
	}
	if until != "" {
		if err := s.ValidateDateSpec(until); err != nil {
			return nil, err
		}
	}

	args := []string{"log", "--since=" + since, "--numstat", "--pretty=format:", "--no-merges"}
	if until != "" {
		args = append(args, "--until="+until)
	}

	out, err := s.run(ctx, safe, args...)
	if err != nil {
		return nil, err
	}

	files := parseNumstat(out)
	result := &DiffResult{Window: since, Files: files}
	for _, f := range files {
		result.TotalAdditions += f.Additions
		result.TotalDeletions += f.Deletions
	}
	return result, nil
}

// UncommittedChanges returns per-file stats for the working tree vs. the
// last commit.
func (s *Scanner) UncommittedChanges(ctx context.Context, path string) ([]FileChange, error) {
	safe, err := s.validateRepo(path)
	if err != nil {
		return nil, err
	}
	out, err := s.run(ctx, safe, "diff", "--numstat")
	if err != nil {
		return nil, err
	}
	return parseNumstat(out), nil
}

// CurrentBranch returns the checked-out branch name.
func (s *Scanner) CurrentBranch(ctx context.Context, path string) (string, error) {
	safe, err := s.validateRepo(path)
	if err != nil {
		return "", err
	}
	out, err := s.run(ctx, safe, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// LastCommitMessage returns the full message of the most recent commit.
func (s *Scanner) LastCommitMessage(ctx context.Context, path string) (string, error) {
	safe, err := s.validateRepo(path)
	if err != nil {
		return "", err
	}
	out, err := s.run(ctx, safe, "log", "-1", "--pretty=%B")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// RecentCommits returns up to count recent non-merge commit subjects,
// newest first. count is clamped to 100.
func (s *Scanner) RecentCommits(ctx context.Context, path string, count int) ([]string, error) {
	safe, err := s.validateRepo(path)
	if err != nil {
		return nil, err
	}
	if count > 100 {
		count = 100
	}
	if count < 1 {
		count = 1
	}

	out, err := s.run(ctx, safe, "log", "-"+strconv.Itoa(count), "--pretty=format:%s", "--no-merges")
	if err != nil {
		return nil, err
	}

	var subjects []string
	for _, line := range strings.Split(out, "\n") {
		if line != "" {
			subjects = append(subjects, line)
		}
	}
	return subjects, nil
}

// tagFieldSep joins the fields of one tag record in git's output.
const tagFieldSep = "|||"

// ListTags returns the repository's tags newest first, each with its short
// commit hash, creation date, and first message line. Malformed records
// (fewer than 3 fields) and blank lines are dropped.
func (s *Scanner) ListTags(ctx context.Context, path string) ([]Tag, error) {
	safe, err := s.validateRepo(path)
	if err != nil {
		return nil, err
	}

	out, err := s.run(ctx, safe,
		"tag", "-l",
		"--format=%(refname:short)"+tagFieldSep+"%(objectname:short)"+tagFieldSep+"%(creatordate:iso-strict)"+tagFieldSep+"%(contents:subject)",
		"--sort=-creatordate",
	)
	if err != nil {
		return nil, err
	}

	var tags []Tag
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, tagFieldSep)
		if len(parts) < 3 {
			continue
		}
		tag := Tag{
			Name:       strings.TrimSpace(parts[0]),
			CommitHash: strings.TrimSpace(parts[1]),
			Date:       strings.TrimSpace(parts[2]),
		}
		if len(parts) > 3 {
			tag.Message = strings.TrimSpace(parts[3])
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
