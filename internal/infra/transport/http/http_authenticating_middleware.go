package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/everyio/tasktracker/internal/domain"
	context_ "github.com/everyio/tasktracker/internal/infra/context"
	"github.com/everyio/tasktracker/internal/infra/logging"
)

// AuthorizationHeader carries the bearer token.
const AuthorizationHeader = "Authorization"

// UserResolver resolves a bearer token to the user it was issued for.
// It returns nil for any token that does not resolve.
type UserResolver interface {
	ResolveUser(ctx context.Context, token string) *domain.User
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
// Returns false if the header is empty or uses another scheme.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

// AuthenticatingMiddleware creates middleware that resolves the bearer token of
// a request to a user and adds it to the request context. Requests without a
// token, or with one that does not resolve, pass through without a user;
// authorization is decided by the operation.
func AuthenticatingMiddleware(
	next http.Handler,
	resolver UserResolver,
	log logging.Logger,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r.Header.Get(AuthorizationHeader))
		if !ok {
			next.ServeHTTP(w, r)

			return
		}

		user := resolver.ResolveUser(r.Context(), token)
		if user == nil {
			log.DebugContext(r.Context(), "bearer token did not resolve")
			next.ServeHTTP(w, r)

			return
		}

		next.ServeHTTP(w, r.WithContext(context_.WithUser(r.Context(), user)))
	})
}
