package authsvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/everyio/tasktracker/internal/domain"
	"github.com/everyio/tasktracker/internal/infra/clock"
	"github.com/everyio/tasktracker/internal/infra/logging"
	"github.com/everyio/tasktracker/internal/repo/user"
)

var (
	// ErrNoAppSecret is returned by NewAuthService when no token secret is configured.
	ErrNoAppSecret = errors.New("no app secret")
	// ErrNotAdmin is returned by ProvisionAdmin when the username belongs to a non-admin user.
	ErrNotAdmin = errors.New("existing user is not an admin")
)

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	// AppSecret is the HMAC key bearer tokens are signed with
	AppSecret string `env:"APP_SECRET" default:"every-io-secret"`

	// BcryptCost is the work factor of password hashes
	BcryptCost int `env:"BCRYPT_COST" default:"10"`
}

// AuthService provides login, token resolution and user management.
type AuthService struct {
	Config   AuthConfig
	UserRepo user.Repository
	Clock    clock.Clock
	Log      logging.Logger

	// dummyHash is compared against for unknown usernames. It is computed
	// at construction so the first such login costs the same as any other.
	dummyHash []byte
}

// NewAuthService creates a new AuthService with the given user repository and configuration.
// Returns an error if the configuration is unusable.
func NewAuthService(userRepo user.Repository, clk clock.Clock, cfg AuthConfig) (*AuthService, error) {
	if cfg.AppSecret == "" {
		return nil, ErrNoAppSecret
	}

	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost: %w", bcrypt.InvalidCostError(cfg.BcryptCost))
	}

	dummyHash, err := HashPassword("dummy-password", cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}

	return &AuthService{
		Config:    cfg,
		UserRepo:  userRepo,
		Clock:     clk,
		Log:       logging.GetLogger("svc.authsvc.auth_service"),
		dummyHash: dummyHash,
	}, nil
}

// compareDummy burns the same bcrypt work as a real comparison so that
// unknown usernames cannot be told apart by response time.
func (s *AuthService) compareDummy(password string) {
	_ = VerifyPassword(password, s.dummyHash)
}

// Login authenticates a user and returns a signed bearer token.
// Unknown usernames and wrong passwords both yield *domain.InvalidLoginCredentialsError.
func (s *AuthService) Login(ctx context.Context, username, password string) (_ string, err error) {
	log := s.Log.With(logging.Group("login", "username", username))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "login failed", "error", err)
		} else {
			log.DebugContext(ctx, "login successful")
		}
	}()

	user, ok, err := s.UserRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	} else if !ok {
		s.compareDummy(password)

		return "", &domain.InvalidLoginCredentialsError{}
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return "", &domain.InvalidLoginCredentialsError{}
	}

	token, err := IssueToken(user.ID, s.Config.AppSecret, s.Clock.Now())
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	return token, nil
}

// ResolveUser returns the user the bearer token belongs to, or nil.
// Failures are logged and never returned.
func (s *AuthService) ResolveUser(ctx context.Context, token string) *domain.User {
	user, err := ResolveUser(ctx, token, s.Config.AppSecret, s.UserRepo.GetUserByID)
	if err != nil {
		s.Log.DebugContext(ctx, "resolve user failed", "error", err)

		return nil
	}

	return user
}

// Me returns the authenticated user.
func (s *AuthService) Me(_ context.Context, actor *domain.User) (*domain.User, error) {
	return Authorize(actor, false)
}

// CreateUser creates a new user on behalf of actor, who must be an admin.
func (s *AuthService) CreateUser(ctx context.Context, actor *domain.User, input domain.UserCreateInput) (*domain.User, error) {
	if _, err := Authorize(actor, true); err != nil {
		s.Log.WarnContext(ctx, "create user refused", logging.UserAttr(actor))

		return nil, err
	}

	return s.createUser(ctx, input)
}

// ProvisionAdmin makes sure an admin with the given username exists, creating it
// through the same path as CreateUser. It is idempotent: an existing admin is
// returned with created set to false and its password left unchanged. Returns
// ErrNotAdmin if the username belongs to a regular user.
func (s *AuthService) ProvisionAdmin(ctx context.Context, username, password string) (_ *domain.User, created bool, err error) {
	log := s.Log.With(logging.Group("provision", "username", username))

	existing, ok, err := s.UserRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, false, fmt.Errorf("get user: %w", err)
	}

	if !ok {
		admin, err := s.createUser(ctx, domain.UserCreateInput{
			Username: username,
			Password: password,
			IsAdmin:  true,
		})
		if err == nil {
			log.InfoContext(ctx, "admin provisioned", logging.UserAttr(admin))

			return admin, true, nil
		} else if !errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, false, err
		}

		// lost a race against a concurrent provisioning run
		existing, ok, err = s.UserRepo.GetUserByUsername(ctx, username)
		if err != nil {
			return nil, false, fmt.Errorf("get user: %w", err)
		} else if !ok {
			return nil, false, fmt.Errorf("get user: %w", domain.ErrUserNotFound)
		}
	}

	if !existing.IsAdmin {
		return nil, false, fmt.Errorf("%w: %s", ErrNotAdmin, username)
	}

	log.InfoContext(ctx, "admin already provisioned", logging.UserAttr(existing))

	return existing, false, nil
}

func (s *AuthService) createUser(ctx context.Context, input domain.UserCreateInput) (_ *domain.User, err error) {
	log := s.Log.With(logging.Group("user", "username", input.Username, "admin", input.IsAdmin))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "create user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user created")
		}
	}()

	if err := input.Validate(); err != nil {
		return nil, err
	}

	passwordHash, err := HashPassword(input.Password, s.Config.BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, &domain.ValidationError{Field: "password", Reason: "must be at most 72 bytes"}
		}

		return nil, fmt.Errorf("hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("new user id: %w", err)
	}

	user := &domain.User{
		ID:           id.String(),
		CreatedAt:    s.Clock.Now(),
		Username:     input.Username,
		PasswordHash: passwordHash,
		IsAdmin:      input.IsAdmin,
	}

	if err := s.UserRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, &domain.UserAlreadyExistsError{Username: input.Username}
		}

		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}
