package task

import (
	"context"
	"time"

	"github.com/everyio/tasktracker/internal/domain"
)

// Repository is the owner-scoped task store. Every method takes the ID of the
// requesting user and never reads or writes tasks owned by anyone else.
type Repository interface {
	// ListForUser returns the tasks owned by ownerID in insertion order.
	ListForUser(ctx context.Context, ownerID string) ([]*domain.Task, error)

	// GetForUser returns the task taskID owned by ownerID.
	// Returns ErrTaskNotFound if the task does not exist or belongs to another user;
	// the two cases are indistinguishable.
	GetForUser(ctx context.Context, ownerID, taskID string) (*domain.Task, error)

	// CreateForUser persists a new TODO task owned by ownerID, created at now.
	CreateForUser(ctx context.Context, ownerID string, input domain.TaskCreateInput, now time.Time) (*domain.Task, error)

	// UpdateStatus moves the task from status from to status to, stamping now.
	// The write only applies while the stored status still equals from;
	// returns ErrStaleTask otherwise and ErrTaskNotFound if the task is not visible.
	UpdateStatus(ctx context.Context, ownerID, taskID string, from, to domain.TaskStatus, now time.Time) (*domain.Task, error)
}
