package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when an id is absent from its collection.
type ErrNotFound struct {
	Entity EntityType
	ID     int
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ValidationError reports a rejected field value.
type ValidationError struct {
	Entity  EntityType
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid %s: %s", e.Entity, e.Message)
	}
	return fmt.Sprintf("invalid %s %s: %s", e.Entity, e.Field, e.Message)
}

// ValidationErrors collects every field failure of a record.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, v := range e {
		msgs = append(msgs, v.Error())
	}
	return strings.Join(msgs, "; ")
}

// Err returns nil when no failures were collected.
func (e ValidationErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// PreconditionError reports an operation that is invalid in the current state,
// such as deleting an occupied room.
type PreconditionError struct {
	Entity  EntityType
	ID      int
	Message string
}

func (e PreconditionError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Entity, e.ID, e.Message)
}

// PersistenceError wraps a durable storage failure. The in-memory mutation
// that preceded it has already been applied.
type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e PersistenceError) Unwrap() error { return e.Err }

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	for _, v := range e.Result.Violations {
		if v.Severity == SeverityBlock {
			return "transaction blocked by rules: " + v.Message
		}
	}
	return "transaction blocked by rules"
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	var target ErrNotFound
	return errors.As(err, &target)
}

// IsValidation reports whether err wraps a ValidationError or ValidationErrors.
func IsValidation(err error) bool {
	var single ValidationError
	if errors.As(err, &single) {
		return true
	}
	var many ValidationErrors
	return errors.As(err, &many)
}

// IsPrecondition reports whether err wraps PreconditionError.
func IsPrecondition(err error) bool {
	var target PreconditionError
	return errors.As(err, &target)
}

// IsPersistence reports whether err wraps PersistenceError.
func IsPersistence(err error) bool {
	var target PersistenceError
	return errors.As(err, &target)
}

// IsRuleViolation reports whether err wraps RuleViolationError.
func IsRuleViolation(err error) bool {
	var target RuleViolationError
	return errors.As(err, &target)
}
