package repository

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a requested record is not found in the repository.
// This abstracts away the underlying storage implementation from the service layer.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a uniqueness constraint
// (room code, player name within a room, one answer per player and question).
var ErrDuplicate = errors.New("duplicate record")

// ErrAnswerWindowClosed is returned when an answer arrives after the room left
// the question's open window (closed, advanced, finished or reset).
var ErrAnswerWindowClosed = errors.New("answer window closed")

// isUniqueViolation reports whether err is a sqlite UNIQUE or PRIMARY KEY violation
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
