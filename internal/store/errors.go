package store

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrDuplicate marks a write that violated a unique constraint. Callers that
// use the documented upsert/replace contracts never see it; a raw insert path
// reaching it indicates the natural key already exists.
var ErrDuplicate = errors.New("duplicate key")

// IsDuplicate reports whether err is a unique-constraint violation,
// either our sentinel or one surfaced by the SQLite driver.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicate) {
		return true
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
