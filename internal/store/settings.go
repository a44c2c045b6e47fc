package store

import (
	"database/sql"
	"encoding/json"
	"log"
)

// userSettingsKey is the settings-table key under which the user settings
// JSON blob is stored.
const userSettingsKey = "user_settings"

// NotificationSettings controls which inbox notifications are produced.
type NotificationSettings struct {
	DailySummary bool `json:"daily_summary"`
	TodoReminder bool `json:"todo_reminder"`
	StaleProject bool `json:"stale_project"`
}

// ScanSettings controls the scheduler's scan cadence and AI features.
type ScanSettings struct {
	Enabled         bool `json:"enabled"`
	IntervalMinutes uint `json:"interval_minutes"`
	ScanOnStartup   bool `json:"scan_on_startup"`
	AutoClassify    bool `json:"auto_classify"`
	AutoSummarize   bool `json:"auto_summarize"`
}

// VersionSettings controls tag syncing and milestone auto-creation.
type VersionSettings struct {
	AutoRefresh            bool `json:"auto_refresh"`
	AutoMilestonesFromTags bool `json:"auto_milestones_from_tags"`
}

// UserSettings is the full settings object stored as one JSON blob.
type UserSettings struct {
	Notifications NotificationSettings `json:"notifications"`
	Scan          ScanSettings         `json:"scan"`
	Version       VersionSettings      `json:"version"`
	Theme         string               `json:"theme"`
	Language      string               `json:"language"`
}

// DefaultUserSettings returns the documented default configuration:
// scanning enabled every 30 minutes with a startup scan, AI classification
// and summarization on, and tag auto-refresh with milestone creation on.
func DefaultUserSettings() UserSettings {
	return UserSettings{
		Notifications: NotificationSettings{
			DailySummary: true,
			TodoReminder: true,
		},
		Scan: ScanSettings{
			Enabled:         true,
			IntervalMinutes: 30,
			ScanOnStartup:   true,
			AutoClassify:    true,
			AutoSummarize:   true,
		},
		Version: VersionSettings{
			AutoRefresh:            true,
			AutoMilestonesFromTags: true,
		},
		Theme:    "dark",
		Language: "en",
	}
}

// GetSetting returns the raw value stored under key, or "" if absent.
// A missing key is not an error.
func (s *Store) GetSetting(key string) (string, error) {
	var val string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&val)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// SetSetting stores a value under key, replacing any prior value.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// UserSettings loads the settings blob, falling back to defaults when the
// key is absent or the stored JSON is malformed. Configuration read failures
// never block a scan from starting.
func (s *Store) UserSettings() UserSettings {
	raw, err := s.GetSetting(userSettingsKey)
	if err != nil {
		log.Printf("settings read error, using defaults: %v", err)
		return DefaultUserSettings()
	}
	if raw == "" {
		return DefaultUserSettings()
	}

	settings := DefaultUserSettings()
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		log.Printf("settings unmarshal error, using defaults: %v", err)
		return DefaultUserSettings()
	}
	return settings
}

// SaveUserSettings persists the settings blob.
func (s *Store) SaveUserSettings(settings UserSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return s.SetSetting(userSettingsKey, string(raw))
}
