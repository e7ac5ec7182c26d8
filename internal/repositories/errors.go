package repositories

import (
	"errors"
	"fmt"
)

// Error wraps persistence failures with the categories services branch on.
type Error struct {
	Op       string
	Err      error
	NotFound bool
	Conflict bool
	// Reference is set when a write points at a row that does not exist.
	Reference bool
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NotFound(op string, err error) error {
	return &Error{Op: op, Err: err, NotFound: true}
}

func Conflict(op string, err error) error {
	return &Error{Op: op, Err: err, Conflict: true}
}

func MissingReference(op string, err error) error {
	return &Error{Op: op, Err: err, Reference: true}
}

// IsNotFound reports whether err marks a missing row.
func IsNotFound(err error) bool {
	var rerr *Error
	return errors.As(err, &rerr) && rerr.NotFound
}

// IsConflict reports whether err marks a unique-key collision.
func IsConflict(err error) bool {
	var rerr *Error
	return errors.As(err, &rerr) && rerr.Conflict
}

// IsMissingReference reports whether err marks a dangling foreign key.
func IsMissingReference(err error) bool {
	var rerr *Error
	return errors.As(err, &rerr) && rerr.Reference
}
