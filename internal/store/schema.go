package store

// schemaVersion is the current schema version. Increment when adding migrations.
const schemaVersion = 2

// migrations maps version numbers to SQL statements that bring the schema
// from (version-1) to (version). Version 1 is the initial schema.
//
// Version 2 is special-cased in migrations.go: it adds the milestones.source
// column, and must be a no-op on a database where the column already exists.
var migrations = map[int]string{
	1: `
-- Tracked repositories.
CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	path       TEXT NOT NULL UNIQUE,
	status     TEXT NOT NULL DEFAULT 'active',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

-- One categorized progress summary per project per day.
CREATE TABLE IF NOT EXISTS daily_logs (
	id                TEXT PRIMARY KEY,
	project_id        TEXT NOT NULL REFERENCES projects(id),
	date              TEXT NOT NULL,
	summary           TEXT NOT NULL,
	category          TEXT NOT NULL DEFAULT 'other',
	files_changed     TEXT NOT NULL DEFAULT '[]',
	ai_classification TEXT NOT NULL DEFAULT '',
	created_at        TEXT NOT NULL,
	UNIQUE(project_id, date)
);

CREATE INDEX IF NOT EXISTS idx_daily_logs_project_date ON daily_logs(project_id, date);

-- Project achievements, optionally derived from git tags.
CREATE TABLE IF NOT EXISTS milestones (
	id           TEXT PRIMARY KEY,
	project_id   TEXT NOT NULL REFERENCES projects(id),
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	version      TEXT NOT NULL DEFAULT '',
	git_tag      TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'planned',
	completed_at TEXT,
	created_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_milestones_project ON milestones(project_id);
CREATE INDEX IF NOT EXISTS idx_milestones_status ON milestones(status);

-- Git tags observed in tracked repositories.
CREATE TABLE IF NOT EXISTS git_tags (
	id            TEXT PRIMARY KEY,
	project_id    TEXT NOT NULL REFERENCES projects(id),
	name          TEXT NOT NULL,
	commit_hash   TEXT NOT NULL,
	date          TEXT NOT NULL,
	message       TEXT NOT NULL DEFAULT '',
	first_seen_at TEXT NOT NULL,
	UNIQUE(project_id, name)
);

CREATE INDEX IF NOT EXISTS idx_git_tags_project ON git_tags(project_id);

-- Notifications surfaced to the user's inbox.
CREATE TABLE IF NOT EXISTS inbox_items (
	id          TEXT PRIMARY KEY,
	item_type   TEXT NOT NULL,
	project_id  TEXT NOT NULL DEFAULT '',
	question    TEXT NOT NULL,
	context     TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'pending',
	answer      TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL,
	answered_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_inbox_status ON inbox_items(status);

-- Opaque JSON settings blobs keyed by name.
CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`,

	2: `
ALTER TABLE milestones ADD COLUMN source TEXT NOT NULL DEFAULT 'manual';
`,
}
