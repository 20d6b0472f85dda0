package domain

import (
	"errors"
	"time"
)

// TaskEntityName is the entity name reported by not-found errors for tasks.
const TaskEntityName = "Task"

var (
	// ErrTaskNotFound is returned by task repositories when no task matches the owner-scoped lookup.
	ErrTaskNotFound = errors.New("task not found")
	// ErrStaleTask is returned when a compare-and-set status write finds the task changed underneath it.
	ErrStaleTask = errors.New("stale task")
)

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID            string     `json:"id"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastUpdatedAt time.Time  `json:"lastUpdatedAt"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Status        TaskStatus `json:"status"`
	OwnerID       string     `json:"-"` // fixed at creation
}

// TaskCreateInput carries the fields a user supplies when creating a task.
type TaskCreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Validate checks that the input describes a creatable task.
func (in TaskCreateInput) Validate() error {
	if in.Title == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}

	return nil
}
