package store

import "fmt"

// ActivityStats returns per-day daily-log counts within the trailing window
// of the given number of days, ordered by date ascending.
func (s *Store) ActivityStats(days int) ([]ActivityStat, error) {
	rows, err := s.db.Query(
		`SELECT date, COUNT(*) FROM daily_logs
		 WHERE date >= date('now', ?)
		 GROUP BY date ORDER BY date`,
		fmt.Sprintf("-%d days", days),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []ActivityStat
	for rows.Next() {
		var st ActivityStat
		if err := rows.Scan(&st.Date, &st.Count); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// CategoryDistribution returns daily-log counts per category,
// most frequent first.
func (s *Store) CategoryDistribution() ([]CategoryStat, error) {
	rows, err := s.db.Query(
		`SELECT category, COUNT(*) FROM daily_logs
		 GROUP BY category ORDER BY COUNT(*) DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []CategoryStat
	for rows.Next() {
		var st CategoryStat
		if err := rows.Scan(&st.Category, &st.Count); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
