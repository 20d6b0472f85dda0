package user

import (
	"context"

	"github.com/everyio/tasktracker/internal/domain"
)

// Repository defines the interface for user data persistence.
type Repository interface {
	// CreateUser adds a new user to the repository.
	// Returns ErrUserAlreadyExists if the username is already taken.
	CreateUser(ctx context.Context, user *domain.User) error

	// GetUserByUsername retrieves a user by their username.
	// Returns the user and true if found, or nil and false if not found.
	// Returns an error only if the lookup itself fails.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, bool, error)

	// GetUserByID retrieves a user by their identifier, with the same
	// result convention as GetUserByUsername.
	GetUserByID(ctx context.Context, id string) (*domain.User, bool, error)
}
