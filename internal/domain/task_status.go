package domain

import (
	"fmt"
	"time"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
	TaskStatusArchived   TaskStatus = "ARCHIVED"
)

// TaskStatuses lists every valid status in declaration order.
//
//nolint:gochecknoglobals
var TaskStatuses = []TaskStatus{
	TaskStatusTodo,
	TaskStatusInProgress,
	TaskStatusDone,
	TaskStatusArchived,
}

// taskStatusTransitions is the complete legality table. A status absent from
// its own destination list can never transition to itself.
//
//nolint:gochecknoglobals
var taskStatusTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusTodo:       {TaskStatusInProgress, TaskStatusDone, TaskStatusArchived},
	TaskStatusInProgress: {TaskStatusTodo, TaskStatusDone, TaskStatusArchived},
	TaskStatusDone:       {TaskStatusTodo, TaskStatusInProgress, TaskStatusArchived},
	TaskStatusArchived:   {},
}

// ParseTaskStatus converts s into a TaskStatus.
// Returns a *ValidationError if s is not a member of the status set.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.Valid() {
		return "", &ValidationError{
			Field:  "taskStatus",
			Reason: fmt.Sprintf("unknown status %q", s),
		}
	}

	return status, nil
}

// Valid reports whether s is a member of the status set.
func (s TaskStatus) Valid() bool {
	_, ok := taskStatusTransitions[s]

	return ok
}

// Next returns the statuses reachable from s in one transition.
// The returned slice is a copy and may be modified by the caller.
func (s TaskStatus) Next() []TaskStatus {
	next := taskStatusTransitions[s]

	return append(make([]TaskStatus, 0, len(next)), next...)
}

// CanTransitionTo reports whether the table allows moving from s to to.
func (s TaskStatus) CanTransitionTo(to TaskStatus) bool {
	for _, candidate := range taskStatusTransitions[s] {
		if candidate == to {
			return true
		}
	}

	return false
}

// Terminal reports whether s has no outgoing transitions.
func (s TaskStatus) Terminal() bool {
	return len(taskStatusTransitions[s]) == 0
}

func (s TaskStatus) String() string {
	return string(s)
}

// Transition moves task to the status to, stamping LastUpdatedAt with now.
// Returns an *InvalidStatusTransitionError and leaves task untouched
// if the table does not allow the change.
func Transition(task *Task, to TaskStatus, now time.Time) error {
	if !task.Status.CanTransitionTo(to) {
		return &InvalidStatusTransitionError{
			TaskID:     task.ID,
			StatusFrom: task.Status,
			StatusTo:   to,
		}
	}

	task.Status = to
	task.LastUpdatedAt = now

	return nil
}
