// Package scheduler coordinates repeated scan passes over all active
// projects. A pass sequences scan -> classify/summarize -> persist -> notify
// for each project, isolating per-project failures. Passes run on three
// triggers: process startup, a periodic ticker, and manual request.
package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sixarms/sixarms/internal/ai"
	"github.com/sixarms/sixarms/internal/classify"
	"github.com/sixarms/sixarms/internal/scanner"
	"github.com/sixarms/sixarms/internal/store"
)

// projectTimeout bounds the subprocess and AI work for a single project so a
// hung external tool cannot stall a pass indefinitely.
const projectTimeout = 2 * time.Minute

// GitScanner is the subset of scanner operations a pass needs.
type GitScanner interface {
	IsRepo(path string) bool
	TodayDiff(ctx context.Context, path string) (*scanner.DiffResult, error)
	LastCommitMessage(ctx context.Context, path string) (string, error)
	ListTags(ctx context.Context, path string) ([]scanner.Tag, error)
}

// PassResult summarizes one completed scan pass.
type PassResult struct {
	ProjectsScanned   int `json:"projects_scanned"`
	InboxItemsCreated int `json:"inbox_items_created"`
	TagsSynced        int `json:"tags_synced"`
	MilestonesCreated int `json:"milestones_created"`
}

// Events receives pass-level observability signals. Delivery is best-effort:
// implementations must not block, and their failures are never treated as
// pass failures.
type Events interface {
	ScanStarted(kind string)
	ScanComplete(kind string, result PassResult)
	TagsSynced(newTags, milestonesCreated int)
}

// Scheduler runs scan passes. Each instance owns its own state; multiple
// independent instances can coexist (e.g. in tests).
type Scheduler struct {
	store    *store.Store
	scanner  GitScanner
	client   ai.Client
	analyzer *ai.Analyzer
	fallback *classify.Classifier
	events   Events

	mu       sync.Mutex
	started  bool
	lastScan time.Time
	stopCh   chan struct{}
}

// New creates a Scheduler. events may be nil.
func New(s *store.Store, sc GitScanner, client ai.Client, events Events) *Scheduler {
	return &Scheduler{
		store:    s,
		scanner:  sc,
		client:   client,
		analyzer: ai.NewAnalyzer(),
		fallback: classify.New(),
		events:   events,
	}
}

// Start begins the periodic scan loop. It is a no-op when scanning is
// disabled in settings or the loop is already running. The loop triggers one
// scheduled pass per tick until Stop is called; an in-flight pass is never
// preempted, only future ticks are suppressed.
func (s *Scheduler) Start(settings store.ScanSettings) {
	if !settings.Enabled {
		log.Println("scheduler disabled in settings")
		return
	}

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		log.Println("scheduler already running")
		return
	}
	s.started = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	interval := time.Duration(settings.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	log.Printf("scheduler started, interval %s", interval)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				log.Println("scheduler stopped")
				return
			case <-ticker.C:
				if err := s.RunScheduledScan(context.Background()); err != nil {
					log.Printf("scheduled scan failed: %v", err)
				}
			}
		}
	}()
}

// Stop suppresses future ticks. Idempotent; does not interrupt a pass in
// progress.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	close(s.stopCh)
}

// Started reports whether the periodic loop is active.
func (s *Scheduler) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// LastScan returns the completion time of the most recent pass, or the zero
// time if no pass has completed since process start.
func (s *Scheduler) LastScan() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastScan
}

// markScanned records pass completion, in memory and in daemon_state so the
// timestamp survives for status queries.
func (s *Scheduler) markScanned() {
	now := time.Now().UTC()
	s.mu.Lock()
	s.lastScan = now
	s.mu.Unlock()
	if err := s.store.SetDaemonState("last_scan_at", now.Format(time.RFC3339)); err != nil {
		log.Printf("record last scan time: %v", err)
	}
}

// RunStartupScan runs one lightweight diff-only pass over all active
// projects, with no AI classification, plus a tag-sync pass when tag
// auto-refresh is enabled. Intended to run once at process launch.
//
// A per-project failure is logged and skipped; only a failure to enumerate
// projects aborts the pass.
func (s *Scheduler) RunStartupScan(ctx context.Context) (PassResult, error) {
	log.Println("running startup scan")
	s.emitStarted("startup")

	var result PassResult

	settings := s.store.UserSettings()

	projects, err := s.store.ActiveProjects()
	if err != nil {
		return result, err
	}
	log.Printf("startup scan: %d active projects", len(projects))

	for _, project := range projects {
		if !s.scanner.IsRepo(project.Path) {
			log.Printf("project %s is not a git repo, skipping", project.Name)
			continue
		}

		pctx, cancel := context.WithTimeout(ctx, projectTimeout)
		diff, err := s.scanner.TodayDiff(pctx, project.Path)
		cancel()
		if err != nil {
			log.Printf("scan %s: %v", project.Name, err)
			continue
		}
		if diff.TotalAdditions > 0 || diff.TotalDeletions > 0 {
			result.ProjectsScanned++
		}
	}

	if settings.Version.AutoRefresh {
		tags, milestones := s.syncAllTags(ctx, projects, settings.Version.AutoMilestonesFromTags)
		result.TagsSynced = tags
		result.MilestonesCreated = milestones
	}

	log.Printf("startup scan complete: %d projects with changes", result.ProjectsScanned)
	s.emitComplete("startup", result)
	s.markScanned()
	return result, nil
}

// RunScheduledScan runs the full pass: diff each active project, classify
// and summarize changed ones through the AI collaborator, persist daily logs
// and inbox items, then sync tags. Per-project failures never abort the pass.
func (s *Scheduler) RunScheduledScan(ctx context.Context) error {
	_, err := s.runFullPass(ctx, "scheduled")
	return err
}

// RunManualScan runs the same full pass on demand, independent of the
// periodic timer's phase. The result is returned for the caller's UI.
func (s *Scheduler) RunManualScan(ctx context.Context) (PassResult, error) {
	return s.runFullPass(ctx, "manual")
}

func (s *Scheduler) runFullPass(ctx context.Context, kind string) (PassResult, error) {
	log.Printf("running %s scan", kind)
	s.emitStarted(kind)

	var result PassResult

	settings := s.store.UserSettings()

	projects, err := s.store.ActiveProjects()
	if err != nil {
		return result, err
	}
	log.Printf("%s scan: %d active projects", kind, len(projects))

	for _, project := range projects {
		if !s.scanner.IsRepo(project.Path) {
			continue
		}

		created, err := s.scanProject(ctx, project, settings)
		if err != nil {
			log.Printf("scan %s: %v", project.Name, err)
			continue
		}
		result.ProjectsScanned++
		result.InboxItemsCreated += created
	}

	if settings.Version.AutoRefresh {
		tags, milestones := s.syncAllTags(ctx, projects, settings.Version.AutoMilestonesFromTags)
		result.TagsSynced = tags
		result.MilestonesCreated = milestones
	}

	log.Printf("%s scan complete: %d inbox items created", kind, result.InboxItemsCreated)
	s.emitComplete(kind, result)
	s.markScanned()
	return result, nil
}

// scanProject diffs one project and, when changes exist and AI features are
// enabled, classifies them, writes an inbox item, and upserts today's daily
// log. Returns the number of inbox items created.
func (s *Scheduler) scanProject(ctx context.Context, project store.Project, settings store.UserSettings) (int, error) {
	pctx, cancel := context.WithTimeout(ctx, projectTimeout)
	defer cancel()

	diff, err := s.scanner.TodayDiff(pctx, project.Path)
	if err != nil {
		return 0, err
	}
	diff.ProjectID = project.ID

	// A zero diff is a valid result; nothing to classify or persist.
	if diff.TotalAdditions == 0 && diff.TotalDeletions == 0 {
		return 0, nil
	}

	if !settings.Scan.AutoClassify && !settings.Scan.AutoSummarize {
		return 0, nil
	}

	analysis, err := s.analyzer.AnalyzeDailyWork(pctx, s.client, project, diff)
	if err != nil {
		if !errors.Is(err, ai.ErrNoAPIKey) {
			// The diff itself succeeded; only the classification step is lost.
			log.Printf("AI analysis failed for %s: %v", project.Name, err)
			return 0, nil
		}
		// No API key configured; classify offline from paths and the latest
		// commit message so the day still gets a log.
		msg, _ := s.scanner.LastCommitMessage(pctx, project.Path)
		category := s.fallback.ClassifyDay(diff.Files, msg)
		analysis = &ai.Analysis{
			Summary:  classify.Summarize(diff.Files, diff.TotalAdditions, diff.TotalDeletions, category),
			Category: string(category),
		}
	}

	created := 0
	item := store.InboxItem{
		ID:        uuid.NewString(),
		ItemType:  "daily_summary",
		ProjectID: project.ID,
		Question:  analysis.Summary,
		Context:   scanner.FormatChanges(diff.Files),
		Status:    store.InboxPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateInboxItem(item); err != nil {
		log.Printf("create inbox item for %s: %v", project.Name, err)
	} else {
		created++
	}

	if settings.Scan.AutoSummarize {
		changes := make([]store.FileChange, len(diff.Files))
		for i, f := range diff.Files {
			changes[i] = store.FileChange{Path: f.Path, Additions: f.Additions, Deletions: f.Deletions}
		}
		entry := store.DailyLog{
			ID:               uuid.NewString(),
			ProjectID:        project.ID,
			Date:             time.Now().Format("2006-01-02"),
			Summary:          analysis.Summary,
			Category:         store.LogCategoryFromString(analysis.Category),
			FilesChanged:     changes,
			AIClassification: analysis.Category,
			CreatedAt:        time.Now().UTC(),
		}
		if err := s.store.CreateDailyLog(entry); err != nil {
			// The (project, date) key is expected to repeat across passes on
			// the same day; only non-duplicate errors are worth logging.
			if !store.IsDuplicate(err) {
				log.Printf("create daily log for %s: %v", project.Name, err)
			}
		}
	}

	return created, nil
}

func (s *Scheduler) emitStarted(kind string) {
	if s.events != nil {
		s.events.ScanStarted(kind)
	}
}

func (s *Scheduler) emitComplete(kind string, result PassResult) {
	if s.events != nil {
		s.events.ScanComplete(kind, result)
	}
}
