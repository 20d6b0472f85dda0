package authsvc

import "github.com/everyio/tasktracker/internal/domain"

// Authorize is the single authorization checkpoint. It returns user unchanged
// if it is present and, when requireAdmin is set, an admin. Otherwise it
// returns an *domain.UnauthorizedError.
func Authorize(user *domain.User, requireAdmin bool) (*domain.User, error) {
	if user == nil {
		return nil, &domain.UnauthorizedError{}
	}

	if requireAdmin && !user.IsAdmin {
		return nil, &domain.UnauthorizedError{}
	}

	return user, nil
}
