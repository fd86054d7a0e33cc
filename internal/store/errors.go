package store

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"candidate-tracker/internal/domain"
)

var (
	ErrDuplicateEmail    = errors.New("this email address already exists in the database")
	ErrDuplicateUsername = errors.New("this username is already taken")
	ErrNotFound          = errors.New("candidate not found")
	ErrUserNotFound      = errors.New("user not found")
)

// Error is a data-access failure that is not one of the domain errors above.
// It keeps the underlying driver error for errors.Is/As.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "data access error: " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(op string, err error) error {
	var se *Error
	switch {
	case errors.As(err, &se):
		return err
	case errors.Is(err, ErrDuplicateEmail),
		errors.Is(err, ErrDuplicateUsername),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidPriority):
		return err
	}
	return &Error{Op: op, Err: err}
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	// primary result code only when extended codes are off
	return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE")
}
