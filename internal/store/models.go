package store

import "time"

// ProjectStatus is the lifecycle state of a tracked repository.
// Stored as a lowercase string; unrecognized values read back as Active.
type ProjectStatus string

const (
	StatusActive   ProjectStatus = "active"
	StatusPaused   ProjectStatus = "paused"
	StatusArchived ProjectStatus = "archived"
)

// ProjectStatusFromString maps a stored string to a ProjectStatus,
// falling back to StatusActive for unknown values.
func ProjectStatusFromString(s string) ProjectStatus {
	switch s {
	case string(StatusPaused):
		return StatusPaused
	case string(StatusArchived):
		return StatusArchived
	default:
		return StatusActive
	}
}

// Project is a tracked repository.
type Project struct {
	ID        string
	Name      string
	Path      string
	Status    ProjectStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LogCategory classifies a day's work.
type LogCategory string

const (
	CategoryFeature  LogCategory = "feature"
	CategoryBugfix   LogCategory = "bugfix"
	CategoryRefactor LogCategory = "refactor"
	CategoryUI       LogCategory = "ui"
	CategoryDocs     LogCategory = "docs"
	CategoryTest     LogCategory = "test"
	CategoryChore    LogCategory = "chore"
	CategoryOther    LogCategory = "other"
)

// LogCategoryFromString maps a stored or AI-produced string to a LogCategory,
// falling back to CategoryOther for unknown values.
func LogCategoryFromString(s string) LogCategory {
	switch LogCategory(s) {
	case CategoryFeature, CategoryBugfix, CategoryRefactor, CategoryUI,
		CategoryDocs, CategoryTest, CategoryChore:
		return LogCategory(s)
	default:
		return CategoryOther
	}
}

// FileChange is one file's additions/deletions within a diff.
type FileChange struct {
	Path      string `json:"path"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// DailyLog is one project's categorized progress summary for a single day.
// Natural key is (ProjectID, Date); a second write for the same day replaces
// the first.
type DailyLog struct {
	ID               string
	ProjectID        string
	Date             string // YYYY-MM-DD
	Summary          string
	Category         LogCategory
	FilesChanged     []FileChange
	AIClassification string // raw AI category label, empty if manual
	CreatedAt        time.Time
}

// MilestoneStatus is the lifecycle state of a milestone.
type MilestoneStatus string

const (
	MilestonePlanned    MilestoneStatus = "planned"
	MilestoneInProgress MilestoneStatus = "in_progress"
	MilestoneCompleted  MilestoneStatus = "completed"
	MilestoneCancelled  MilestoneStatus = "cancelled"
)

// MilestoneStatusFromString falls back to MilestonePlanned for unknown values.
func MilestoneStatusFromString(s string) MilestoneStatus {
	switch MilestoneStatus(s) {
	case MilestoneInProgress, MilestoneCompleted, MilestoneCancelled:
		return MilestoneStatus(s)
	default:
		return MilestonePlanned
	}
}

// MilestoneSource records how a milestone came to exist.
type MilestoneSource string

const (
	SourceManual MilestoneSource = "manual"
	SourceTag    MilestoneSource = "tag"
	SourceAI     MilestoneSource = "ai"
)

// MilestoneSourceFromString falls back to SourceManual for unknown values.
func MilestoneSourceFromString(s string) MilestoneSource {
	switch MilestoneSource(s) {
	case SourceTag, SourceAI:
		return MilestoneSource(s)
	default:
		return SourceManual
	}
}

// Milestone is a project achievement, possibly auto-derived from a git tag.
// At most one tag-sourced milestone exists per (ProjectID, GitTag).
type Milestone struct {
	ID          string
	ProjectID   string
	Title       string
	Description string
	Version     string
	GitTag      string // tag name this milestone was derived from, if any
	Status      MilestoneStatus
	Source      MilestoneSource
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// CachedGitTag is a git tag observed in a repository.
// Natural key is (ProjectID, Name); upserts update hash/date/message in place.
type CachedGitTag struct {
	ID          string
	ProjectID   string
	Name        string
	CommitHash  string
	Date        string // ISO-8601 as emitted by git
	Message     string
	FirstSeenAt time.Time
}

// InboxStatus is the lifecycle state of an inbox item.
type InboxStatus string

const (
	InboxPending  InboxStatus = "pending"
	InboxAnswered InboxStatus = "answered"
	InboxSkipped  InboxStatus = "skipped"
)

// InboxStatusFromString falls back to InboxPending for unknown values.
func InboxStatusFromString(s string) InboxStatus {
	switch InboxStatus(s) {
	case InboxAnswered, InboxSkipped:
		return InboxStatus(s)
	default:
		return InboxPending
	}
}

// InboxItem is a notification delivered to the user's inbox, typically a
// daily summary produced by the scheduler.
type InboxItem struct {
	ID         string
	ItemType   string // "daily_summary", "classification", ...
	ProjectID  string
	Question   string
	Context    string
	Status     InboxStatus
	Answer     string
	CreatedAt  time.Time
	AnsweredAt *time.Time
}

// ActivityStat is one day's daily-log count.
type ActivityStat struct {
	Date  string
	Count int
}

// CategoryStat is one category's daily-log count.
type CategoryStat struct {
	Category string
	Count    int
}
