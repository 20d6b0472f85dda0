package authsvc_test

import (
	"errors"
	"testing"

	"github.com/everyio/tasktracker/internal/domain"
	"github.com/everyio/tasktracker/internal/svc/authsvc"
)

func TestAuthorize(t *testing.T) {
	t.Parallel()

	regular := &domain.User{ID: "user-1", Username: "regular"}
	admin := &domain.User{ID: "admin-1", Username: "admin", IsAdmin: true}

	tests := []struct {
		name         string
		user         *domain.User
		requireAdmin bool
		wantErr      bool
	}{
		{name: "absent user", user: nil, requireAdmin: false, wantErr: true},
		{name: "absent user, admin required", user: nil, requireAdmin: true, wantErr: true},
		{name: "regular user", user: regular, requireAdmin: false},
		{name: "regular user, admin required", user: regular, requireAdmin: true, wantErr: true},
		{name: "admin", user: admin, requireAdmin: false},
		{name: "admin, admin required", user: admin, requireAdmin: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := authsvc.Authorize(tt.user, tt.requireAdmin)

			if tt.wantErr {
				var unauthorized *domain.UnauthorizedError
				if !errors.As(err, &unauthorized) {
					t.Errorf("Authorize() error = %v, want UnauthorizedError", err)
				}
				if got != nil {
					t.Errorf("Authorize() = %v, want nil", got)
				}

				return
			}

			if err != nil {
				t.Fatalf("Authorize() error = %v", err)
			}
			if got != tt.user {
				t.Errorf("Authorize() = %v, want the same user %v", got, tt.user)
			}
		})
	}
}
