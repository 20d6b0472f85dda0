package domain_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/everyio/tasktracker/internal/domain"
)

func TestAPIError_Shapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         domain.APIError
		wantMessage string
		wantCode    string
		wantData    map[string]any
	}{
		{
			name:        "invalid login credentials",
			err:         &domain.InvalidLoginCredentialsError{},
			wantMessage: "Invalid login credentials",
			wantCode:    "InvalidLoginCredentialsError",
		},
		{
			name:        "unauthorized",
			err:         &domain.UnauthorizedError{},
			wantMessage: "Unauthorized",
			wantCode:    "UnauthorizedError",
		},
		{
			name:        "record not found",
			err:         &domain.RecordNotFoundError{EntityName: "Task", ID: "abc"},
			wantMessage: "Task with id abc not found",
			wantCode:    "RecordNotFoundError",
			wantData:    map[string]any{"entityName": "Task", "id": "abc"},
		},
		{
			name: "invalid status transition",
			err: &domain.InvalidStatusTransitionError{
				TaskID:     "abc",
				StatusFrom: domain.TaskStatusArchived,
				StatusTo:   domain.TaskStatusTodo,
			},
			wantMessage: "Invalid status transition from ARCHIVED to TODO for task abc",
			wantCode:    "InvalidStatusTransitionError",
			wantData: map[string]any{
				"taskId":     "abc",
				"statusFrom": domain.TaskStatusArchived,
				"statusTo":   domain.TaskStatusTodo,
			},
		},
		{
			name:        "concurrent update",
			err:         &domain.ConcurrentUpdateError{TaskID: "abc"},
			wantMessage: "Task abc was modified concurrently",
			wantCode:    "ConcurrentUpdateError",
			wantData:    map[string]any{"taskId": "abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
			if got := tt.err.Code(); got != tt.wantCode {
				t.Errorf("Code() = %q, want %q", got, tt.wantCode)
			}
			if got := tt.err.PublicData(); !reflect.DeepEqual(got, tt.wantData) {
				t.Errorf("PublicData() = %v, want %v", got, tt.wantData)
			}
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	t.Parallel()

	if !errors.Is(&domain.UserAlreadyExistsError{Username: "alice"}, domain.ErrUserAlreadyExists) {
		t.Error("UserAlreadyExistsError does not match ErrUserAlreadyExists")
	}
	if !errors.Is(&domain.ConcurrentUpdateError{TaskID: "abc"}, domain.ErrStaleTask) {
		t.Error("ConcurrentUpdateError does not match ErrStaleTask")
	}
}
