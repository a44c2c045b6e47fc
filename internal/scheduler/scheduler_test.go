package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sixarms/sixarms/internal/ai"
	"github.com/sixarms/sixarms/internal/scanner"
	"github.com/sixarms/sixarms/internal/store"
)

type fakeScanner struct {
	diffs      map[string]*scanner.DiffResult
	errs       map[string]error
	tags       map[string][]scanner.Tag
	commitMsgs map[string]string
}

func (f *fakeScanner) IsRepo(path string) bool { return true }

func (f *fakeScanner) TodayDiff(ctx context.Context, path string) (*scanner.DiffResult, error) {
	if err := f.errs[path]; err != nil {
		return nil, err
	}
	if d, ok := f.diffs[path]; ok {
		cp := *d
		return &cp, nil
	}
	return &scanner.DiffResult{}, nil
}

func (f *fakeScanner) LastCommitMessage(ctx context.Context, path string) (string, error) {
	return f.commitMsgs[path], nil
}

func (f *fakeScanner) ListTags(ctx context.Context, path string) ([]scanner.Tag, error) {
	return f.tags[path], nil
}

type fakeClient struct {
	reply string
	err   error
	calls int
}

func (c *fakeClient) Chat(ctx context.Context, msgs []ai.Message) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

type recordingEvents struct {
	started   []string
	completed []string
	tagCalls  int
}

func (e *recordingEvents) ScanStarted(kind string) { e.started = append(e.started, kind) }

func (e *recordingEvents) ScanComplete(kind string, _ PassResult) {
	e.completed = append(e.completed, kind)
}

func (e *recordingEvents) TagsSynced(newTags, milestonesCreated int) { e.tagCalls++ }

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func addProject(t *testing.T, s *store.Store, name, path string) store.Project {
	t.Helper()
	p := store.Project{
		ID:        uuid.NewString(),
		Name:      name,
		Path:      path,
		Status:    store.StatusActive,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.CreateProject(p); err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

const analysisJSON = `{"summary":"Added the config parser","category":"feature","insights":[],"suggested_todos":[]}`

func TestManualScanCreatesInboxAndLog(t *testing.T) {
	st := newTestStore(t)
	p := addProject(t, st, "alpha", "/repos/alpha")

	sc := &fakeScanner{diffs: map[string]*scanner.DiffResult{
		"/repos/alpha": {
			Files:          []scanner.FileChange{{Path: "main.go", Additions: 10, Deletions: 2}},
			TotalAdditions: 10,
			TotalDeletions: 2,
		},
	}}
	client := &fakeClient{reply: analysisJSON}
	events := &recordingEvents{}

	sched := New(st, sc, client, events)
	result, err := sched.RunManualScan(context.Background())
	if err != nil {
		t.Fatalf("RunManualScan: %v", err)
	}
	if result.ProjectsScanned != 1 || result.InboxItemsCreated != 1 {
		t.Errorf("result = %+v, want 1 scanned, 1 inbox item", result)
	}
	if client.calls != 1 {
		t.Errorf("client calls = %d, want 1", client.calls)
	}

	items, err := st.InboxItems(store.InboxPending)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 inbox item, got %d", len(items))
	}
	if items[0].Question != "Added the config parser" {
		t.Errorf("question = %q", items[0].Question)
	}
	if items[0].ItemType != "daily_summary" {
		t.Errorf("item type = %q", items[0].ItemType)
	}

	logs, err := st.DailyLogs(p.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 daily log, got %d", len(logs))
	}
	if logs[0].Category != store.CategoryFeature {
		t.Errorf("category = %q", logs[0].Category)
	}
	if len(logs[0].FilesChanged) != 1 || logs[0].FilesChanged[0].Path != "main.go" {
		t.Errorf("files = %+v", logs[0].FilesChanged)
	}

	if len(events.started) != 1 || events.started[0] != "manual" {
		t.Errorf("started events = %v", events.started)
	}
	if len(events.completed) != 1 {
		t.Errorf("completed events = %v", events.completed)
	}
	if sched.LastScan().IsZero() {
		t.Error("LastScan not recorded")
	}
}

func TestSameDayPassesKeepOneLog(t *testing.T) {
	st := newTestStore(t)
	p := addProject(t, st, "alpha", "/repos/alpha")

	sc := &fakeScanner{diffs: map[string]*scanner.DiffResult{
		"/repos/alpha": {TotalAdditions: 3},
	}}
	client := &fakeClient{reply: `{"summary":"Morning work","category":"chore"}`}
	sched := New(st, sc, client, nil)

	if _, err := sched.RunManualScan(context.Background()); err != nil {
		t.Fatal(err)
	}
	client.reply = `{"summary":"Afternoon work","category":"bugfix"}`
	if _, err := sched.RunManualScan(context.Background()); err != nil {
		t.Fatal(err)
	}

	logs, err := st.DailyLogs(p.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 daily log after two same-day passes, got %d", len(logs))
	}
	if logs[0].Summary != "Afternoon work" {
		t.Errorf("summary = %q, want the later pass to win", logs[0].Summary)
	}

	// Inbox items accumulate; only the daily log collapses by date.
	items, err := st.InboxItems("")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 inbox items, got %d", len(items))
	}
}

func TestFailingProjectDoesNotAbortPass(t *testing.T) {
	st := newTestStore(t)
	addProject(t, st, "broken", "/repos/broken")
	good := addProject(t, st, "good", "/repos/good")

	sc := &fakeScanner{
		diffs: map[string]*scanner.DiffResult{
			"/repos/good": {TotalAdditions: 5},
		},
		errs: map[string]error{
			"/repos/broken": errors.New("git log timed out"),
		},
	}
	sched := New(st, sc, &fakeClient{reply: analysisJSON}, nil)

	result, err := sched.RunManualScan(context.Background())
	if err != nil {
		t.Fatalf("pass should survive a per-project failure: %v", err)
	}
	if result.ProjectsScanned != 1 {
		t.Errorf("ProjectsScanned = %d, want 1", result.ProjectsScanned)
	}

	logs, err := st.DailyLogs(good.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Errorf("good project should still get its log, got %d", len(logs))
	}
}

func TestAIFailureSkipsPersistenceOnly(t *testing.T) {
	st := newTestStore(t)
	p := addProject(t, st, "alpha", "/repos/alpha")

	sc := &fakeScanner{diffs: map[string]*scanner.DiffResult{
		"/repos/alpha": {TotalAdditions: 1},
	}}
	sched := New(st, sc, &fakeClient{err: errors.New("api unreachable")}, nil)

	result, err := sched.RunManualScan(context.Background())
	if err != nil {
		t.Fatalf("RunManualScan: %v", err)
	}
	if result.ProjectsScanned != 1 {
		t.Errorf("ProjectsScanned = %d, want 1", result.ProjectsScanned)
	}
	if result.InboxItemsCreated != 0 {
		t.Errorf("InboxItemsCreated = %d, want 0", result.InboxItemsCreated)
	}
	logs, err := st.DailyLogs(p.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 0 {
		t.Errorf("expected no logs when analysis fails, got %d", len(logs))
	}
}

func TestNoAPIKeyFallsBackToHeuristics(t *testing.T) {
	st := newTestStore(t)
	p := addProject(t, st, "alpha", "/repos/alpha")

	sc := &fakeScanner{
		diffs: map[string]*scanner.DiffResult{
			"/repos/alpha": {
				Files:          []scanner.FileChange{{Path: "parser_test.go", Additions: 120}},
				TotalAdditions: 120,
			},
		},
		commitMsgs: map[string]string{"/repos/alpha": "add parser edge case coverage"},
	}
	sched := New(st, sc, &fakeClient{err: ai.ErrNoAPIKey}, nil)

	result, err := sched.RunManualScan(context.Background())
	if err != nil {
		t.Fatalf("RunManualScan: %v", err)
	}
	if result.InboxItemsCreated != 1 {
		t.Errorf("InboxItemsCreated = %d, want 1 from offline classification", result.InboxItemsCreated)
	}

	logs, err := st.DailyLogs(p.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 daily log, got %d", len(logs))
	}
	if logs[0].Category != store.CategoryTest {
		t.Errorf("category = %q, want test from path heuristics", logs[0].Category)
	}
	if logs[0].Summary == "" {
		t.Error("empty heuristic summary")
	}
}

func TestTagSyncIdempotent(t *testing.T) {
	st := newTestStore(t)
	p := addProject(t, st, "alpha", "/repos/alpha")

	sc := &fakeScanner{tags: map[string][]scanner.Tag{
		"/repos/alpha": {
			{Name: "v1.1.0", CommitHash: "bbb2222", Date: "2024-02-01T10:00:00+00:00", Message: "second"},
			{Name: "v1.0.0", CommitHash: "aaa1111", Date: "2024-01-01T10:00:00+00:00", Message: "first"},
		},
	}}
	sched := New(st, sc, &fakeClient{reply: analysisJSON}, nil)

	first, err := sched.RunManualScan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if first.TagsSynced != 2 || first.MilestonesCreated != 2 {
		t.Errorf("first pass = %+v, want 2 tags and 2 milestones", first)
	}

	for i := 0; i < 3; i++ {
		again, err := sched.RunManualScan(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if again.TagsSynced != 0 || again.MilestonesCreated != 0 {
			t.Errorf("repeat pass %d = %+v, want nothing new", i, again)
		}
	}

	milestones, err := st.Milestones(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(milestones) != 2 {
		t.Fatalf("expected exactly 2 milestones, got %d", len(milestones))
	}
	for _, m := range milestones {
		if m.Source != store.SourceTag {
			t.Errorf("milestone %s source = %q", m.Title, m.Source)
		}
		if m.Status != store.MilestoneCompleted {
			t.Errorf("milestone %s status = %q", m.Title, m.Status)
		}
		if m.CompletedAt == nil {
			t.Errorf("milestone %s missing completed_at", m.Title)
		}
	}

	tags, err := st.CachedTags(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 {
		t.Errorf("expected 2 cached tags, got %d", len(tags))
	}
}

func TestTagSyncHonorsMilestoneToggle(t *testing.T) {
	st := newTestStore(t)
	p := addProject(t, st, "alpha", "/repos/alpha")

	settings := store.DefaultUserSettings()
	settings.Version.AutoMilestonesFromTags = false
	if err := st.SaveUserSettings(settings); err != nil {
		t.Fatal(err)
	}

	sc := &fakeScanner{tags: map[string][]scanner.Tag{
		"/repos/alpha": {{Name: "v1.0.0", CommitHash: "aaa1111", Date: "2024-01-01T10:00:00+00:00"}},
	}}
	sched := New(st, sc, &fakeClient{reply: analysisJSON}, nil)

	result, err := sched.RunManualScan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.TagsSynced != 1 {
		t.Errorf("TagsSynced = %d, want 1", result.TagsSynced)
	}
	if result.MilestonesCreated != 0 {
		t.Errorf("MilestonesCreated = %d, want 0 with auto-milestones off", result.MilestonesCreated)
	}
	milestones, err := st.Milestones(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(milestones) != 0 {
		t.Errorf("expected no milestones, got %d", len(milestones))
	}
}

func TestStartupScanSkipsAI(t *testing.T) {
	st := newTestStore(t)
	addProject(t, st, "alpha", "/repos/alpha")
	addProject(t, st, "beta", "/repos/beta")

	sc := &fakeScanner{diffs: map[string]*scanner.DiffResult{
		"/repos/alpha": {TotalAdditions: 7},
		// beta has no changes today.
	}}
	client := &fakeClient{reply: analysisJSON}
	sched := New(st, sc, client, nil)

	result, err := sched.RunStartupScan(context.Background())
	if err != nil {
		t.Fatalf("RunStartupScan: %v", err)
	}
	if result.ProjectsScanned != 1 {
		t.Errorf("ProjectsScanned = %d, want 1 (only changed projects)", result.ProjectsScanned)
	}
	if result.InboxItemsCreated != 0 {
		t.Errorf("InboxItemsCreated = %d, want 0", result.InboxItemsCreated)
	}
	if client.calls != 0 {
		t.Errorf("startup scan must not call the AI client, got %d calls", client.calls)
	}

	items, err := st.InboxItems("")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty inbox, got %d items", len(items))
	}
}

func TestPausedProjectsAreSkipped(t *testing.T) {
	st := newTestStore(t)
	paused := addProject(t, st, "paused", "/repos/paused")
	if err := st.UpdateProjectStatus(paused.ID, store.StatusPaused); err != nil {
		t.Fatal(err)
	}

	sc := &fakeScanner{diffs: map[string]*scanner.DiffResult{
		"/repos/paused": {TotalAdditions: 9},
	}}
	sched := New(st, sc, &fakeClient{reply: analysisJSON}, nil)

	result, err := sched.RunManualScan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.ProjectsScanned != 0 {
		t.Errorf("ProjectsScanned = %d, want 0 for paused project", result.ProjectsScanned)
	}
}

func TestStartDisabledIsNoOp(t *testing.T) {
	st := newTestStore(t)
	sched := New(st, &fakeScanner{}, &fakeClient{}, nil)

	sched.Start(store.ScanSettings{Enabled: false, IntervalMinutes: 30})
	if sched.Started() {
		t.Error("scheduler should not start when disabled")
	}
}

func TestStartAndStop(t *testing.T) {
	st := newTestStore(t)
	sched := New(st, &fakeScanner{}, &fakeClient{}, nil)

	sched.Start(store.ScanSettings{Enabled: true, IntervalMinutes: 60})
	if !sched.Started() {
		t.Fatal("scheduler should be running")
	}

	// A second Start while running must not spawn another loop.
	sched.Start(store.ScanSettings{Enabled: true, IntervalMinutes: 60})

	sched.Stop()
	if sched.Started() {
		t.Error("scheduler should be stopped")
	}
	// Stop is idempotent.
	sched.Stop()
}
