package task_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/everyio/tasktracker/internal/domain"
	"github.com/everyio/tasktracker/internal/repo/database"
	"github.com/everyio/tasktracker/internal/repo/task"
	"github.com/everyio/tasktracker/internal/repo/user"
)

const (
	aliceID = "0190a0c4-0000-7000-8000-00000000a11c"
	bobID   = "0190a0c4-0000-7000-8000-000000000b0b"
)

//nolint:gochecknoglobals
var now = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func setupTestRepo(t *testing.T) *task.SQLTaskRepository {
	t.Helper()

	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{
		Driver: database.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "tasks.db"),
	})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	users := user.NewSQLUserRepository(db)
	for id, username := range map[string]string{aliceID: "alice", bobID: "bob"} {
		if err := users.CreateUser(ctx, &domain.User{ID: id, Username: username, PasswordHash: []byte("x")}); err != nil {
			t.Fatalf("failed to create user %s: %v", username, err)
		}
	}

	return task.NewSQLTaskRepository(db)
}

func TestSQLTaskRepository_CreateForUser(t *testing.T) {
	t.Parallel()

	repo := setupTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateForUser(ctx, aliceID, domain.TaskCreateInput{Title: "Test", Description: "A Test Task"}, now)
	if err != nil {
		t.Fatalf("CreateForUser() error = %v", err)
	}

	if created.ID == "" {
		t.Error("CreateForUser() returned empty id")
	}
	if created.Status != domain.TaskStatusTodo {
		t.Errorf("Status = %v, want %v", created.Status, domain.TaskStatusTodo)
	}
	if created.OwnerID != aliceID {
		t.Errorf("OwnerID = %v, want %v", created.OwnerID, aliceID)
	}
	if !created.CreatedAt.Equal(now) || !created.LastUpdatedAt.Equal(now) {
		t.Errorf("timestamps = %v / %v, want %v", created.CreatedAt, created.LastUpdatedAt, now)
	}

	fetched, err := repo.GetForUser(ctx, aliceID, created.ID)
	if err != nil {
		t.Fatalf("GetForUser() error = %v", err)
	}

	if *fetched != *created {
		t.Errorf("GetForUser() = %+v, want %+v", fetched, created)
	}
}

func TestSQLTaskRepository_OwnerScoping(t *testing.T) {
	t.Parallel()

	repo := setupTestRepo(t)
	ctx := context.Background()

	var aliceTasks []string

	for i, title := range []string{"first", "second", "third"} {
		created, err := repo.CreateForUser(ctx, aliceID, domain.TaskCreateInput{Title: title}, now.Add(-time.Duration(i)*time.Hour))
		if err != nil {
			t.Fatalf("CreateForUser() error = %v", err)
		}

		aliceTasks = append(aliceTasks, created.ID)
	}

	bobTask, err := repo.CreateForUser(ctx, bobID, domain.TaskCreateInput{Title: "bob's"}, now)
	if err != nil {
		t.Fatalf("CreateForUser() error = %v", err)
	}

	t.Run("list returns only own tasks in insertion order", func(t *testing.T) {
		tasks, err := repo.ListForUser(ctx, aliceID)
		if err != nil {
			t.Fatalf("ListForUser() error = %v", err)
		}

		if len(tasks) != len(aliceTasks) {
			t.Fatalf("ListForUser() returned %d tasks, want %d", len(tasks), len(aliceTasks))
		}

		for i, task := range tasks {
			if task.ID != aliceTasks[i] {
				t.Errorf("tasks[%d].ID = %v, want %v", i, task.ID, aliceTasks[i])
			}
		}
	})

	t.Run("list for user without tasks is empty", func(t *testing.T) {
		tasks, err := repo.ListForUser(ctx, "nobody")
		if err != nil {
			t.Fatalf("ListForUser() error = %v", err)
		}

		if tasks == nil || len(tasks) != 0 {
			t.Errorf("ListForUser() = %v, want empty slice", tasks)
		}
	})

	t.Run("foreign task is not found", func(t *testing.T) {
		_, err := repo.GetForUser(ctx, aliceID, bobTask.ID)
		if !errors.Is(err, domain.ErrTaskNotFound) {
			t.Errorf("GetForUser() error = %v, want %v", err, domain.ErrTaskNotFound)
		}
	})

	t.Run("absent task is not found", func(t *testing.T) {
		_, err := repo.GetForUser(ctx, aliceID, "missing")
		if !errors.Is(err, domain.ErrTaskNotFound) {
			t.Errorf("GetForUser() error = %v, want %v", err, domain.ErrTaskNotFound)
		}
	})

	t.Run("foreign task cannot be updated", func(t *testing.T) {
		_, err := repo.UpdateStatus(ctx, aliceID, bobTask.ID, domain.TaskStatusTodo, domain.TaskStatusDone, now)
		if !errors.Is(err, domain.ErrTaskNotFound) {
			t.Errorf("UpdateStatus() error = %v, want %v", err, domain.ErrTaskNotFound)
		}

		unchanged, err := repo.GetForUser(ctx, bobID, bobTask.ID)
		if err != nil {
			t.Fatalf("GetForUser() error = %v", err)
		}

		if unchanged.Status != domain.TaskStatusTodo {
			t.Errorf("foreign task status = %v, want %v", unchanged.Status, domain.TaskStatusTodo)
		}
	})
}

func TestSQLTaskRepository_UpdateStatus(t *testing.T) {
	t.Parallel()

	repo := setupTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateForUser(ctx, aliceID, domain.TaskCreateInput{Title: "Test"}, now)
	if err != nil {
		t.Fatalf("CreateForUser() error = %v", err)
	}

	later := now.Add(time.Minute)

	updated, err := repo.UpdateStatus(ctx, aliceID, created.ID, domain.TaskStatusTodo, domain.TaskStatusInProgress, later)
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	if updated.Status != domain.TaskStatusInProgress {
		t.Errorf("Status = %v, want %v", updated.Status, domain.TaskStatusInProgress)
	}
	if !updated.LastUpdatedAt.Equal(later) {
		t.Errorf("LastUpdatedAt = %v, want %v", updated.LastUpdatedAt, later)
	}
	if !updated.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", updated.CreatedAt, now)
	}

	// A second writer still believing the task is TODO loses.
	_, err = repo.UpdateStatus(ctx, aliceID, created.ID, domain.TaskStatusTodo, domain.TaskStatusDone, later)
	if !errors.Is(err, domain.ErrStaleTask) {
		t.Errorf("UpdateStatus() error = %v, want %v", err, domain.ErrStaleTask)
	}

	current, err := repo.GetForUser(ctx, aliceID, created.ID)
	if err != nil {
		t.Fatalf("GetForUser() error = %v", err)
	}

	if current.Status != domain.TaskStatusInProgress {
		t.Errorf("stale write changed status to %v", current.Status)
	}
}

func TestSQLTaskRepository_UpdateStatus_ConcurrentWriters(t *testing.T) {
	t.Parallel()

	repo := setupTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateForUser(ctx, aliceID, domain.TaskCreateInput{Title: "Contended"}, now)
	if err != nil {
		t.Fatalf("CreateForUser() error = %v", err)
	}

	targets := []domain.TaskStatus{domain.TaskStatusInProgress, domain.TaskStatusDone, domain.TaskStatusArchived}

	type result struct {
		to      domain.TaskStatus
		at      time.Time
		updated *domain.Task
		err     error
	}

	var (
		wg      sync.WaitGroup
		results = make([]result, 12)
	)

	for i := range results {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			to := targets[i%len(targets)]
			at := now.Add(time.Duration(i+1) * time.Millisecond)
			updated, err := repo.UpdateStatus(ctx, aliceID, created.ID, domain.TaskStatusTodo, to, at)
			results[i] = result{to: to, at: at, updated: updated, err: err}
		}(i)
	}

	wg.Wait()

	var winners []result

	for _, r := range results {
		switch {
		case r.err == nil:
			winners = append(winners, r)
		case !errors.Is(r.err, domain.ErrStaleTask):
			t.Errorf("UpdateStatus() error = %v, want nil or %v", r.err, domain.ErrStaleTask)
		}
	}

	if len(winners) != 1 {
		t.Fatalf("UpdateStatus() winners = %d, want exactly 1", len(winners))
	}

	winner := winners[0]
	if winner.updated.Status != winner.to || !winner.updated.LastUpdatedAt.Equal(winner.at) {
		t.Errorf("winner returned %v at %v, but wrote %v at %v",
			winner.updated.Status, winner.updated.LastUpdatedAt, winner.to, winner.at)
	}
	if winner.updated.Title != "Contended" || !winner.updated.CreatedAt.Equal(now) {
		t.Errorf("winner returned %+v", winner.updated)
	}

	stored, err := repo.GetForUser(ctx, aliceID, created.ID)
	if err != nil {
		t.Fatalf("GetForUser() error = %v", err)
	}
	if stored.Status != winner.to || !stored.LastUpdatedAt.Equal(winner.at) {
		t.Errorf("stored %v at %v, want %v at %v", stored.Status, stored.LastUpdatedAt, winner.to, winner.at)
	}
}
