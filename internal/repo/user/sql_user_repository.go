package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/everyio/tasktracker/internal/domain"
	"github.com/everyio/tasktracker/internal/infra/logging"
	"github.com/everyio/tasktracker/internal/repo/database"
)

const userColumns = "id, created_at, username, password_hash, is_admin"

// SQLUserRepository implements Repository on top of the shared store handle.
type SQLUserRepository struct {
	db  *database.DB
	log logging.Logger
}

var _ Repository = (*SQLUserRepository)(nil)

// NewSQLUserRepository creates a user repository backed by db.
// The caller keeps ownership of db and closes it.
func NewSQLUserRepository(db *database.DB) *SQLUserRepository {
	return &SQLUserRepository{
		db: db,
		log: logging.GetLogger("repo.user.sql_user_repository").With(
			logging.Group("db", "driver", db.Driver()),
		),
	}
}

// CreateUser implements Repository.CreateUser.
func (r *SQLUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	unlock := r.db.LockWrites()
	defer unlock()

	_, err := r.db.ExecContext(ctx,
		r.db.Rebind("INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?)"),
		user.ID,
		user.CreatedAt.UnixMilli(),
		user.Username,
		user.PasswordHash,
		user.IsAdmin,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			err = errors.Join(domain.ErrUserAlreadyExists, err)
		}

		return fmt.Errorf("insert user: %w", err)
	}

	r.log.DebugContext(ctx, "user inserted", logging.UserAttr(user))

	return nil
}

// GetUserByUsername implements Repository.GetUserByUsername.
func (r *SQLUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, bool, error) {
	return r.getUser(ctx, "username", username)
}

// GetUserByID implements Repository.GetUserByID.
func (r *SQLUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, bool, error) {
	return r.getUser(ctx, "id", id)
}

func (r *SQLUserRepository) getUser(ctx context.Context, column, value string) (*domain.User, bool, error) {
	var (
		user      domain.User
		createdAt int64
	)

	err := r.db.QueryRowContext(ctx,
		r.db.Rebind("SELECT "+userColumns+" FROM users WHERE "+column+" = ?"),
		value,
	).Scan(&user.ID, &createdAt, &user.Username, &user.PasswordHash, &user.IsAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("query user: %w", err)
	}

	user.CreatedAt = time.UnixMilli(createdAt).UTC()

	return &user, true, nil
}
