package domain

import (
	"fmt"
)

// APIError is implemented by every error that may be shown to an API caller.
// Code is the machine-readable error kind and PublicData holds the
// kind-specific fields that are safe to expose.
type APIError interface {
	error
	Code() string
	PublicData() map[string]any
}

var (
	_ APIError = (*InvalidLoginCredentialsError)(nil)
	_ APIError = (*UnauthorizedError)(nil)
	_ APIError = (*RecordNotFoundError)(nil)
	_ APIError = (*InvalidStatusTransitionError)(nil)
	_ APIError = (*ValidationError)(nil)
	_ APIError = (*UserAlreadyExistsError)(nil)
	_ APIError = (*ConcurrentUpdateError)(nil)
)

// InvalidLoginCredentialsError is returned by login for both unknown usernames and wrong passwords.
type InvalidLoginCredentialsError struct{}

func (*InvalidLoginCredentialsError) Error() string              { return "Invalid login credentials" }
func (*InvalidLoginCredentialsError) Code() string               { return "InvalidLoginCredentialsError" }
func (*InvalidLoginCredentialsError) PublicData() map[string]any { return nil }

// UnauthorizedError is returned when no user is resolved or an admin is required.
type UnauthorizedError struct{}

func (*UnauthorizedError) Error() string              { return "Unauthorized" }
func (*UnauthorizedError) Code() string               { return "UnauthorizedError" }
func (*UnauthorizedError) PublicData() map[string]any { return nil }

// RecordNotFoundError is returned when an entity does not exist or is not visible to the caller.
type RecordNotFoundError struct {
	EntityName string
	ID         string
}

func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("%s with id %s not found", e.EntityName, e.ID)
}

func (*RecordNotFoundError) Code() string { return "RecordNotFoundError" }

func (e *RecordNotFoundError) PublicData() map[string]any {
	return map[string]any{
		"entityName": e.EntityName,
		"id":         e.ID,
	}
}

// InvalidStatusTransitionError is returned when the transition table rejects a status change.
type InvalidStatusTransitionError struct {
	TaskID     string
	StatusFrom TaskStatus
	StatusTo   TaskStatus
}

func (e *InvalidStatusTransitionError) Error() string {
	return fmt.Sprintf("Invalid status transition from %s to %s for task %s", e.StatusFrom, e.StatusTo, e.TaskID)
}

func (*InvalidStatusTransitionError) Code() string { return "InvalidStatusTransitionError" }

func (e *InvalidStatusTransitionError) PublicData() map[string]any {
	return map[string]any{
		"taskId":     e.TaskID,
		"statusFrom": e.StatusFrom,
		"statusTo":   e.StatusTo,
	}
}

// ValidationError is returned when an operation argument is malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "Invalid input: " + e.Reason
	}

	return fmt.Sprintf("Invalid %s: %s", e.Field, e.Reason)
}

func (*ValidationError) Code() string { return "ValidationError" }

func (e *ValidationError) PublicData() map[string]any {
	if e.Field == "" {
		return nil
	}

	return map[string]any{"field": e.Field}
}

// UserAlreadyExistsError is returned by userCreate when the username is taken.
type UserAlreadyExistsError struct {
	Username string
}

func (e *UserAlreadyExistsError) Error() string {
	return fmt.Sprintf("User %s already exists", e.Username)
}

func (*UserAlreadyExistsError) Code() string { return "UserAlreadyExistsError" }

func (e *UserAlreadyExistsError) PublicData() map[string]any {
	return map[string]any{"username": e.Username}
}

// Unwrap lets errors.Is match ErrUserAlreadyExists.
func (*UserAlreadyExistsError) Unwrap() error { return ErrUserAlreadyExists }

// ConcurrentUpdateError is returned when another request changed the task's
// status between read and write. Nothing was written; re-reading and retrying is safe.
type ConcurrentUpdateError struct {
	TaskID string
}

func (e *ConcurrentUpdateError) Error() string {
	return fmt.Sprintf("Task %s was modified concurrently", e.TaskID)
}

func (*ConcurrentUpdateError) Code() string { return "ConcurrentUpdateError" }

func (e *ConcurrentUpdateError) PublicData() map[string]any {
	return map[string]any{"taskId": e.TaskID}
}

// Unwrap lets errors.Is match ErrStaleTask.
func (*ConcurrentUpdateError) Unwrap() error { return ErrStaleTask }
