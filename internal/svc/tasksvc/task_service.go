package tasksvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/everyio/tasktracker/internal/domain"
	"github.com/everyio/tasktracker/internal/infra/clock"
	"github.com/everyio/tasktracker/internal/infra/logging"
	"github.com/everyio/tasktracker/internal/repo/task"
	"github.com/everyio/tasktracker/internal/svc/authsvc"
)

// TaskService implements the task operations. Every operation authorizes the
// actor first and only ever touches tasks the actor owns.
type TaskService struct {
	Repo  task.Repository
	Clock clock.Clock
	Log   logging.Logger
}

// NewTaskService creates a new TaskService backed by repo.
func NewTaskService(repo task.Repository, clk clock.Clock) *TaskService {
	return &TaskService{
		Repo:  repo,
		Clock: clk,
		Log:   logging.GetLogger("svc.tasksvc.task_service"),
	}
}

// All returns every task owned by actor in insertion order.
func (s *TaskService) All(ctx context.Context, actor *domain.User) ([]*domain.Task, error) {
	user, err := authsvc.Authorize(actor, false)
	if err != nil {
		return nil, err
	}

	tasks, err := s.Repo.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

// One returns the task taskID if actor owns it. Tasks of other users are
// reported as not found.
func (s *TaskService) One(ctx context.Context, actor *domain.User, taskID string) (*domain.Task, error) {
	user, err := authsvc.Authorize(actor, false)
	if err != nil {
		return nil, err
	}

	return s.get(ctx, user, taskID)
}

func (s *TaskService) get(ctx context.Context, user *domain.User, taskID string) (*domain.Task, error) {
	t, err := s.Repo.GetForUser(ctx, user.ID, taskID)
	if errors.Is(err, domain.ErrTaskNotFound) {
		return nil, &domain.RecordNotFoundError{EntityName: domain.TaskEntityName, ID: taskID}
	} else if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	return t, nil
}

// Create adds a new TODO task owned by actor.
func (s *TaskService) Create(ctx context.Context, actor *domain.User, input domain.TaskCreateInput) (_ *domain.Task, err error) {
	user, err := authsvc.Authorize(actor, false)
	if err != nil {
		return nil, err
	}

	log := s.Log.With(logging.UserAttr(user))

	defer func() {
		if err != nil {
			log.Log(ctx, errorLevel(err), "create task failed", "error", err)
		}
	}()

	if err := input.Validate(); err != nil {
		return nil, err
	}

	t, err := s.Repo.CreateForUser(ctx, user.ID, input, s.Clock.Now())
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	log.DebugContext(ctx, "task created", logging.TaskAttr(t))

	return t, nil
}

// UpdateStatus moves the task taskID owned by actor to status to.
// Illegal moves yield *domain.InvalidStatusTransitionError and leave the task
// untouched. A concurrent change of the same task between reading and writing
// yields *domain.ConcurrentUpdateError.
func (s *TaskService) UpdateStatus(
	ctx context.Context,
	actor *domain.User,
	taskID string,
	to domain.TaskStatus,
) (_ *domain.Task, err error) {
	user, err := authsvc.Authorize(actor, false)
	if err != nil {
		return nil, err
	}

	log := s.Log.With(logging.UserAttr(user), logging.Group("transition", "task_id", taskID, "to", to))

	defer func() {
		if err != nil {
			log.Log(ctx, errorLevel(err), "update task status failed", "error", err)
		} else {
			log.DebugContext(ctx, "task status updated")
		}
	}()

	to, err = domain.ParseTaskStatus(string(to))
	if err != nil {
		return nil, err
	}

	current, err := s.get(ctx, user, taskID)
	if err != nil {
		return nil, err
	}

	next := *current
	if err := domain.Transition(&next, to, s.Clock.Now()); err != nil {
		return nil, err
	}

	updated, err := s.Repo.UpdateStatus(ctx, user.ID, taskID, current.Status, next.Status, next.LastUpdatedAt)
	if errors.Is(err, domain.ErrStaleTask) {
		return nil, &domain.ConcurrentUpdateError{TaskID: taskID}
	} else if errors.Is(err, domain.ErrTaskNotFound) {
		return nil, &domain.RecordNotFoundError{EntityName: domain.TaskEntityName, ID: taskID}
	} else if err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}

	return updated, nil
}

func errorLevel(err error) logging.Level {
	var apiErr domain.APIError
	if errors.As(err, &apiErr) {
		return logging.LevelWarn
	}

	return logging.LevelError
}
