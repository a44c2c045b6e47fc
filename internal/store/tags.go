package store

import (
	"database/sql"
	"time"
)

// UpsertGitTag records a tag observation. If the (project, name) pair is
// already cached, the hash, date, and message are updated in place (a tag
// force-pushed to point elsewhere) and false is returned. If the tag is new
// it is inserted and true is returned.
//
// The return value drives milestone auto-creation downstream; callers must
// not re-derive newness by re-querying.
func (s *Store) UpsertGitTag(tag CachedGitTag) (bool, error) {
	var existingID string
	err := s.db.QueryRow(
		`SELECT id FROM git_tags WHERE project_id = ? AND name = ?`,
		tag.ProjectID, tag.Name,
	).Scan(&existingID)

	switch {
	case err == sql.ErrNoRows:
		_, err := s.db.Exec(
			`INSERT INTO git_tags (id, project_id, name, commit_hash, date, message, first_seen_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			tag.ID, tag.ProjectID, tag.Name, tag.CommitHash, tag.Date, tag.Message,
			tag.FirstSeenAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return false, err
		}
		return true, nil

	case err != nil:
		return false, err

	default:
		_, err := s.db.Exec(
			`UPDATE git_tags SET commit_hash = ?, date = ?, message = ?
			 WHERE project_id = ? AND name = ?`,
			tag.CommitHash, tag.Date, tag.Message, tag.ProjectID, tag.Name,
		)
		if err != nil {
			return false, err
		}
		return false, nil
	}
}

// CachedTags returns the cached tags for a project, newest first.
func (s *Store) CachedTags(projectID string) ([]CachedGitTag, error) {
	rows, err := s.db.Query(
		`SELECT id, project_id, name, commit_hash, date, message, first_seen_at
		 FROM git_tags WHERE project_id = ? ORDER BY date DESC`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows)
}

// AllCachedTags returns every cached tag across all projects, newest first.
func (s *Store) AllCachedTags() ([]CachedGitTag, error) {
	rows, err := s.db.Query(
		`SELECT id, project_id, name, commit_hash, date, message, first_seen_at
		 FROM git_tags ORDER BY date DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows)
}

// DeleteGitTagsForProject removes all cached tags for a project.
func (s *Store) DeleteGitTagsForProject(projectID string) error {
	_, err := s.db.Exec(`DELETE FROM git_tags WHERE project_id = ?`, projectID)
	return err
}

func scanTags(rows *sql.Rows) ([]CachedGitTag, error) {
	var tags []CachedGitTag
	for rows.Next() {
		var (
			t         CachedGitTag
			firstSeen string
		)
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Name, &t.CommitHash,
			&t.Date, &t.Message, &firstSeen); err != nil {
			return nil, err
		}
		t.FirstSeenAt = parseTime(firstSeen)
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
