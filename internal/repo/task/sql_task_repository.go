package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/everyio/tasktracker/internal/domain"
	"github.com/everyio/tasktracker/internal/infra/logging"
	"github.com/everyio/tasktracker/internal/repo/database"
)

const taskColumns = "id, created_at, last_updated_at, title, description, status, owner_id"

// SQLTaskRepository implements Repository on top of the shared store handle.
type SQLTaskRepository struct {
	db  *database.DB
	log logging.Logger
}

var _ Repository = (*SQLTaskRepository)(nil)

// NewSQLTaskRepository creates a task repository backed by db.
// The caller keeps ownership of db and closes it.
func NewSQLTaskRepository(db *database.DB) *SQLTaskRepository {
	return &SQLTaskRepository{
		db: db,
		log: logging.GetLogger("repo.task.sql_task_repository").With(
			logging.Group("db", "driver", db.Driver()),
		),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task                     domain.Task
		createdAt, lastUpdatedAt int64
	)

	if err := row.Scan(
		&task.ID,
		&createdAt,
		&lastUpdatedAt,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.OwnerID,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}

	task.CreatedAt = time.UnixMilli(createdAt).UTC()
	task.LastUpdatedAt = time.UnixMilli(lastUpdatedAt).UTC()

	return &task, nil
}

// ListForUser implements Repository.ListForUser.
func (r *SQLTaskRepository) ListForUser(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		r.db.Rebind("SELECT "+taskColumns+" FROM tasks WHERE owner_id = ? ORDER BY seq"),
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)

	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}

		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return tasks, nil
}

// GetForUser implements Repository.GetForUser.
func (r *SQLTaskRepository) GetForUser(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	task, err := scanTask(r.db.QueryRowContext(ctx,
		r.db.Rebind("SELECT "+taskColumns+" FROM tasks WHERE id = ? AND owner_id = ?"),
		taskID,
		ownerID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}

		return nil, fmt.Errorf("query task: %w", err)
	}

	return task, nil
}

// CreateForUser implements Repository.CreateForUser.
func (r *SQLTaskRepository) CreateForUser(
	ctx context.Context,
	ownerID string,
	input domain.TaskCreateInput,
	now time.Time,
) (*domain.Task, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("new task id: %w", err)
	}

	task := &domain.Task{
		ID:            id.String(),
		CreatedAt:     now,
		LastUpdatedAt: now,
		Title:         input.Title,
		Description:   input.Description,
		Status:        domain.TaskStatusTodo,
		OwnerID:       ownerID,
	}

	unlock := r.db.LockWrites()
	defer unlock()

	if _, err := r.db.ExecContext(ctx,
		r.db.Rebind("INSERT INTO tasks ("+taskColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)"),
		task.ID,
		task.CreatedAt.UnixMilli(),
		task.LastUpdatedAt.UnixMilli(),
		task.Title,
		task.Description,
		string(task.Status),
		task.OwnerID,
	); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	r.log.DebugContext(ctx, "task inserted", logging.TaskAttr(task))

	return task, nil
}

// UpdateStatus implements Repository.UpdateStatus.
// The returned task is the row as written by this call.
func (r *SQLTaskRepository) UpdateStatus(
	ctx context.Context,
	ownerID, taskID string,
	from, to domain.TaskStatus,
	now time.Time,
) (*domain.Task, error) {
	unlock := r.db.LockWrites()

	task, err := scanTask(r.db.QueryRowContext(ctx,
		r.db.Rebind("UPDATE tasks SET status = ?, last_updated_at = ? "+
			"WHERE id = ? AND owner_id = ? AND status = ? RETURNING "+taskColumns),
		string(to),
		now.UnixMilli(),
		taskID,
		ownerID,
		string(from),
	))

	unlock()

	if err == nil {
		return task, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update task status: %w", err)
	}

	// nothing matched: the task is gone, foreign or no longer in status from
	current, err := r.GetForUser(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	r.log.WarnContext(ctx, "stale task status",
		logging.TaskAttr(current),
		logging.Group("transition", "from", from, "to", to),
	)

	return nil, domain.ErrStaleTask
}
