package database

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// Domain errors returned by the stores. Handlers translate these into HTTP
// statuses; nothing below this package knows about HTTP.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("already exists")
	ErrForbidden   = errors.New("not allowed")
	ErrDefaultList = errors.New("default lists cannot be modified")
	ErrNotFriend   = errors.New("user is not a friend")
	ErrSelfFriend  = errors.New("cannot add yourself as a friend")
)

// isUniqueViolation reports whether err is a SQLite unique-index violation.
// Uniqueness constraints are the only mechanism guarding concurrent duplicate
// creation, so a violation must surface as a conflict rather than a crash.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
