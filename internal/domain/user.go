package domain

import (
	"errors"
	"time"
)

var (
	// ErrUserAlreadyExists is returned when trying to create a user with an existing username.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = errors.New("user not found")
)

// User represents an account that owns tasks.
type User struct {
	ID           string    `json:"id"`        // Unique identifier
	CreatedAt    time.Time `json:"createdAt"` // Time of account creation
	Username     string    `json:"username"`  // Login username, unique
	PasswordHash []byte    `json:"-"`         // bcrypt hash
	IsAdmin      bool      `json:"isAdmin"`   // May create other users
}

// UserCreateInput carries the fields an admin supplies when creating a user.
type UserCreateInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Validate checks that the input describes a creatable user.
func (in UserCreateInput) Validate() error {
	if in.Username == "" {
		return &ValidationError{Field: "username", Reason: "must not be empty"}
	}

	if in.Password == "" {
		return &ValidationError{Field: "password", Reason: "must not be empty"}
	}

	return nil
}
