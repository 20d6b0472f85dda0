package context

import (
	"context"

	"github.com/everyio/tasktracker/internal/domain"
)

const contextKeyUser = contextKey("user")

// UserFromContext extracts the authenticated user from the context.
// Returns nil if the request carried no valid bearer token.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(contextKeyUser).(*domain.User)

	return user
}

// WithUser creates a new context carrying the authenticated user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, contextKeyUser, user)
}
