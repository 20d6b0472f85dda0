package authsvc

import (
	"context"
	"fmt"
	"net/http"

	"github.com/everyio/tasktracker/internal/domain"
	context_ "github.com/everyio/tasktracker/internal/infra/context"
	"github.com/everyio/tasktracker/internal/infra/logging"
	http_ "github.com/everyio/tasktracker/internal/infra/transport/http"
)

// Operation names served by HTTPTransport.
const (
	OperationLogin      = "login"
	OperationMe         = "me"
	OperationUserCreate = "userCreate"
)

// HTTPTransport handles HTTP requests for the authentication service.
// It provides the login, me and userCreate operations.
type HTTPTransport struct {
	authSvc *AuthService
	log     logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport instance.
// It requires an AuthService for handling authentication operations.
func NewHTTPTransport(authSvc *AuthService) *HTTPTransport {
	return &HTTPTransport{
		authSvc: authSvc,
		log:     logging.GetLogger("svc.authsvc.http_transport"),
	}
}

// Routes registers the auth service operations on mux:
// - POST /api/login: Exchange credentials for a bearer token
// - POST /api/me: Return the authenticated user
// - POST /api/userCreate: Create a user (admin only).
func (ht *HTTPTransport) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/"+OperationLogin, ht.HandleLogin)
	mux.HandleFunc("POST /api/"+OperationMe, ht.HandleMe)
	mux.HandleFunc("POST /api/"+OperationUserCreate, ht.HandleUserCreate)
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	ht.Routes(mux)
	mux.ServeHTTP(w, r)
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

type loginArgs struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userCreateArgs struct {
	Input domain.UserCreateInput `json:"input"`
}

// HandleLogin processes login requests.
// Expects JSON arguments: username, password
// Returns an auth token on successful login.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.Log(ctx, http_.ErrorLevel(err), "user login failed", "error", err)
			_ = http_.WriteError(w, err)
		} else {
			log.DebugContext(ctx, "user logged in")
		}
	}(r.Context())

	args, err := http_.DecodeArgs[loginArgs](r)
	if err != nil {
		return err
	}

	log = log.With(logging.Group("user", "username", args.Username))

	token, err := ht.authSvc.Login(r.Context(), args.Username, args.Password)
	if err != nil {
		return fmt.Errorf("login user: %w", err)
	}

	return http_.WriteData(w, OperationLogin, domain.AuthTokenResponse{Token: token})
}

// HandleMe returns the user the request's bearer token belongs to.
func (ht *HTTPTransport) HandleMe(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleMe(w, r)
}

func (ht *HTTPTransport) handleMe(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.Log(ctx, http_.ErrorLevel(err), "me failed", "error", err)
			_ = http_.WriteError(w, err)
		}
	}(r.Context())

	user, err := ht.authSvc.Me(r.Context(), context_.UserFromContext(r.Context()))
	if err != nil {
		return fmt.Errorf("me: %w", err)
	}

	return http_.WriteData(w, OperationMe, user)
}

// HandleUserCreate processes user creation requests.
// Expects JSON arguments: input{username, password, isAdmin}
// Returns the created user.
func (ht *HTTPTransport) HandleUserCreate(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleUserCreate(w, r)
}

func (ht *HTTPTransport) handleUserCreate(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.Log(ctx, http_.ErrorLevel(err), "user create failed", "error", err)
			_ = http_.WriteError(w, err)
		} else {
			log.DebugContext(ctx, "user created")
		}
	}(r.Context())

	args, err := http_.DecodeArgs[userCreateArgs](r)
	if err != nil {
		return err
	}

	user, err := ht.authSvc.CreateUser(r.Context(), context_.UserFromContext(r.Context()), args.Input)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return http_.WriteData(w, OperationUserCreate, user)
}
