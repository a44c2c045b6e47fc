package store

import (
	"database/sql"
	"time"
)

// CreateInboxItem inserts a new inbox notification.
func (s *Store) CreateInboxItem(item InboxItem) error {
	var answeredAt interface{}
	if item.AnsweredAt != nil {
		answeredAt = item.AnsweredAt.UTC().Format(time.RFC3339)
	}
	_, err := s.db.Exec(
		`INSERT INTO inbox_items (id, item_type, project_id, question, context, status, answer, created_at, answered_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.ItemType, item.ProjectID, item.Question, item.Context,
		string(item.Status), item.Answer,
		item.CreatedAt.UTC().Format(time.RFC3339), answeredAt,
	)
	return err
}

// InboxItems returns inbox items ordered by creation time descending,
// optionally filtered by status (empty status means all).
func (s *Store) InboxItems(status InboxStatus) ([]InboxItem, error) {
	var (
		rows *sql.Rows
		err  error
	)
	query := `SELECT id, item_type, project_id, question, context, status, answer, created_at, answered_at
	          FROM inbox_items`
	if status != "" {
		rows, err = s.db.Query(query+` WHERE status = ? ORDER BY created_at DESC`, string(status))
	} else {
		rows, err = s.db.Query(query + ` ORDER BY created_at DESC`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []InboxItem
	for rows.Next() {
		var (
			it         InboxItem
			itStatus   string
			createdAt  string
			answeredAt sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.ItemType, &it.ProjectID, &it.Question,
			&it.Context, &itStatus, &it.Answer, &createdAt, &answeredAt); err != nil {
			return nil, err
		}
		it.Status = InboxStatusFromString(itStatus)
		it.CreatedAt = parseTime(createdAt)
		if answeredAt.Valid {
			t := parseTime(answeredAt.String)
			it.AnsweredAt = &t
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// AnswerInboxItem marks an item answered with the given text.
func (s *Store) AnswerInboxItem(id, answer string) error {
	_, err := s.db.Exec(
		`UPDATE inbox_items SET status = ?, answer = ?, answered_at = ? WHERE id = ?`,
		string(InboxAnswered), answer, time.Now().UTC().Format(time.RFC3339), id,
	)
	return err
}
