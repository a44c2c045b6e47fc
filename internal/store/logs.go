package store

import (
	"database/sql"
	"encoding/json"
	"time"
)

// CreateDailyLog writes a daily log, replacing any existing log for the same
// (project, date). This is the documented upsert contract: a second write for
// the same day supersedes the first, it never appends.
func (s *Store) CreateDailyLog(l DailyLog) error {
	files, err := json.Marshal(l.FilesChanged)
	if err != nil {
		return err
	}
	if l.FilesChanged == nil {
		files = []byte("[]")
	}
	_, err = s.db.Exec(
		`INSERT INTO daily_logs (id, project_id, date, summary, category, files_changed, ai_classification, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(project_id, date) DO UPDATE SET
		   summary = excluded.summary,
		   category = excluded.category,
		   files_changed = excluded.files_changed,
		   ai_classification = excluded.ai_classification,
		   created_at = excluded.created_at`,
		l.ID, l.ProjectID, l.Date, l.Summary, string(l.Category),
		string(files), l.AIClassification,
		l.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// DailyLogs returns logs ordered by date descending, optionally filtered by
// project. A limit <= 0 means no limit.
func (s *Store) DailyLogs(projectID string, limit int) ([]DailyLog, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats negative LIMIT as unlimited.
	}

	var (
		rows *sql.Rows
		err  error
	)
	if projectID != "" {
		rows, err = s.db.Query(
			`SELECT id, project_id, date, summary, category, files_changed, ai_classification, created_at
			 FROM daily_logs WHERE project_id = ? ORDER BY date DESC LIMIT ?`,
			projectID, limit,
		)
	} else {
		rows, err = s.db.Query(
			`SELECT id, project_id, date, summary, category, files_changed, ai_classification, created_at
			 FROM daily_logs ORDER BY date DESC LIMIT ?`,
			limit,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []DailyLog
	for rows.Next() {
		var (
			l         DailyLog
			category  string
			filesJSON string
			createdAt string
		)
		if err := rows.Scan(&l.ID, &l.ProjectID, &l.Date, &l.Summary,
			&category, &filesJSON, &l.AIClassification, &createdAt); err != nil {
			return nil, err
		}
		l.Category = LogCategoryFromString(category)
		if err := json.Unmarshal([]byte(filesJSON), &l.FilesChanged); err != nil {
			l.FilesChanged = nil
		}
		l.CreatedAt = parseTime(createdAt)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// DailyLogForDate returns the log for a specific (project, date), or nil.
func (s *Store) DailyLogForDate(projectID, date string) (*DailyLog, error) {
	logs, err := s.DailyLogs(projectID, 0)
	if err != nil {
		return nil, err
	}
	for i := range logs {
		if logs[i].Date == date {
			return &logs[i], nil
		}
	}
	return nil, nil
}
