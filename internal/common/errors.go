// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound          = errors.New("not found")
	ErrDatabaseCorrupted = errors.New("database corrupted")

	// Session errors.
	ErrNoOwner        = errors.New("no owner configured")
	ErrNothingToSave  = errors.New("working set is empty")
	ErrUnknownFormat  = errors.New("unrecognised file format")
	ErrNoSheetsInFile = errors.New("workbook has no sheets")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ParseError reports a file that could not be decoded into rows. The
// working set is left unchanged when an import fails with one.
type ParseError struct {
	Err  error
	File string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a failed store operation. Op names the gateway
// call ("save", "replace", "load", "clear", "delete", "save validation").
type PersistenceError struct {
	Err error
	Op  string
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// UserMessage returns the message to show for err. Parse and persistence
// failures get a fixed lead-in; anything else is shown as is.
func UserMessage(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.Error()
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return fmt.Sprintf("Could not read %s: %v", parseErr.File, parseErr.Err)
	}
	var persistErr *PersistenceError
	if errors.As(err, &persistErr) {
		return fmt.Sprintf("Could not %s data: %v", persistErr.Op, persistErr.Err)
	}
	if errors.Is(err, ErrNoOwner) {
		return "No owner is configured. Set owner.id in the config file or VATFLOW_OWNER_ID."
	}
	return err.Error()
}
