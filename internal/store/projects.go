package store

import (
	"database/sql"
	"fmt"
	"time"
)

// CreateProject inserts a new tracked repository. The project path is
// globally unique; registering the same path twice returns a duplicate error.
func (s *Store) CreateProject(p Project) error {
	_, err := s.db.Exec(
		`INSERT INTO projects (id, name, path, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Path, string(p.Status),
		p.CreatedAt.UTC().Format(time.RFC3339),
		p.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if IsDuplicate(err) {
		return fmt.Errorf("project path %s: %w", p.Path, ErrDuplicate)
	}
	return err
}

// Projects returns all tracked projects ordered by name.
func (s *Store) Projects() ([]Project, error) {
	rows, err := s.db.Query(
		`SELECT id, name, path, status, created_at, updated_at
		 FROM projects ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjects(rows)
}

// ActiveProjects returns all projects with status "active", ordered by name.
// Only these are eligible for scanning.
func (s *Store) ActiveProjects() ([]Project, error) {
	rows, err := s.db.Query(
		`SELECT id, name, path, status, created_at, updated_at
		 FROM projects WHERE status = ? ORDER BY name`,
		string(StatusActive),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjects(rows)
}

// ProjectByID returns the project with the given id, or nil if absent.
func (s *Store) ProjectByID(id string) (*Project, error) {
	row := s.db.QueryRow(
		`SELECT id, name, path, status, created_at, updated_at
		 FROM projects WHERE id = ?`, id,
	)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProjectStatus sets a project's status and bumps its updated_at.
func (s *Store) UpdateProjectStatus(id string, status ProjectStatus) error {
	_, err := s.db.Exec(
		`UPDATE projects SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC().Format(time.RFC3339), id,
	)
	return err
}

// DeleteProject removes a project and its dependent rows (logs, milestones,
// cached tags). The schema has no ON DELETE CASCADE, so children are deleted
// explicitly before the parent.
func (s *Store) DeleteProject(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, stmt := range []string{
		`DELETE FROM daily_logs WHERE project_id = ?`,
		`DELETE FROM milestones WHERE project_id = ?`,
		`DELETE FROM git_tags WHERE project_id = ?`,
		`DELETE FROM projects WHERE id = ?`,
	} {
		if _, err := tx.Exec(stmt, id); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("delete project %s: %w", id, err)
		}
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (Project, error) {
	var (
		p                    Project
		status               string
		createdAt, updatedAt string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Path, &status, &createdAt, &updatedAt); err != nil {
		return Project{}, err
	}
	p.Status = ProjectStatusFromString(status)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return p, nil
}

func scanProjects(rows *sql.Rows) ([]Project, error) {
	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// parseTime parses an RFC3339 timestamp, returning the zero time on failure.
// Stored timestamps are always written by this package, so a parse failure
// means hand-edited data; zero is safer than failing the whole read.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
