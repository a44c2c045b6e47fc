package store

import (
	"database/sql"
	"time"
)

// CreateMilestone inserts a new milestone. Milestones have no natural key
// beyond their id; tag-sourced uniqueness is enforced by callers through
// MilestoneExistsForTag before insertion.
func (s *Store) CreateMilestone(m Milestone) error {
	var completedAt interface{}
	if m.CompletedAt != nil {
		completedAt = m.CompletedAt.UTC().Format(time.RFC3339)
	}
	_, err := s.db.Exec(
		`INSERT INTO milestones (id, project_id, title, description, version, git_tag, status, source, completed_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ProjectID, m.Title, m.Description, m.Version, m.GitTag,
		string(m.Status), string(m.Source), completedAt,
		m.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// Milestones returns milestones ordered by creation time descending,
// optionally filtered by project.
func (s *Store) Milestones(projectID string) ([]Milestone, error) {
	var (
		rows *sql.Rows
		err  error
	)
	query := `SELECT id, project_id, title, description, version, git_tag, status, source, completed_at, created_at
	          FROM milestones`
	if projectID != "" {
		rows, err = s.db.Query(query+` WHERE project_id = ? ORDER BY created_at DESC`, projectID)
	} else {
		rows, err = s.db.Query(query + ` ORDER BY created_at DESC`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var milestones []Milestone
	for rows.Next() {
		var (
			m           Milestone
			status      string
			source      string
			completedAt sql.NullString
			createdAt   string
		)
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Title, &m.Description,
			&m.Version, &m.GitTag, &status, &source, &completedAt, &createdAt); err != nil {
			return nil, err
		}
		m.Status = MilestoneStatusFromString(status)
		m.Source = MilestoneSourceFromString(source)
		if completedAt.Valid {
			t := parseTime(completedAt.String)
			m.CompletedAt = &t
		}
		m.CreatedAt = parseTime(createdAt)
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

// MilestoneExistsForTag reports whether any milestone already references the
// given tag in the given project. The scheduler uses this to keep tag-derived
// milestone creation idempotent across repeated sync passes.
func (s *Store) MilestoneExistsForTag(projectID, tagName string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM milestones WHERE project_id = ? AND git_tag = ?`,
		projectID, tagName,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateMilestoneStatus sets a milestone's status, stamping completed_at when
// the new status is completed and clearing it otherwise.
func (s *Store) UpdateMilestoneStatus(id string, status MilestoneStatus) error {
	var completedAt interface{}
	if status == MilestoneCompleted {
		completedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := s.db.Exec(
		`UPDATE milestones SET status = ?, completed_at = ? WHERE id = ?`,
		string(status), completedAt, id,
	)
	return err
}

// DeleteMilestone removes a milestone by id.
func (s *Store) DeleteMilestone(id string) error {
	_, err := s.db.Exec(`DELETE FROM milestones WHERE id = ?`, id)
	return err
}
