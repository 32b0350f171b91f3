// Package auth_repo stores users and refresh tokens.
package auth_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/domain/auth"
	"tradedesk/internal/infrastructure/storage/postgres"
)

const (
	usersTable  = "auth_users"
	tokensTable = "auth_refresh_tokens"
)

type UserRepo struct {
	txm  *postgres.TxManager
	cols []string
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txm *postgres.TxManager) *UserRepo {
	return &UserRepo{txm: txm, cols: postgres.ExtractDBColumns[auth.User]()}
}

var _ auth.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) db(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// Create inserts the user. A taken email maps to a duplicate error.
func (r *UserRepo) Create(ctx context.Context, u *auth.User) error {
	sql, args, err := postgres.Builder().Insert(usersTable).SetMap(postgres.StructToMap(u)).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "user", u.Email)
	}
	return nil
}

// GetByID returns the user with userID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	return r.get(ctx, squirrel.Eq{"id": userID}, userID)
}

// GetByEmail returns the user with the email. The service lowercases emails.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.get(ctx, squirrel.Eq{"email": email}, email)
}

func (r *UserRepo) get(ctx context.Context, where squirrel.Eq, key any) (*auth.User, error) {
	sql, args, err := postgres.Builder().Select(r.cols...).From(usersTable).Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var u auth.User
	if err := pgxscan.Get(ctx, r.db(ctx), &u, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", key)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// Update rewrites mutable columns; the email is fixed.
func (r *UserRepo) Update(ctx context.Context, u *auth.User) error {
	sql, args, err := postgres.Builder().
		Update(usersTable).
		SetMap(map[string]any{
			"full_name":             u.FullName,
			"roles":                 u.Roles,
			"is_active":             u.IsActive,
			"is_admin":              u.IsAdmin,
			"last_login_at":         u.LastLoginAt,
			"failed_login_attempts": u.FailedLoginAttempts,
			"locked_until":          u.LockedUntil,
			"password_hash":         u.PasswordHash,
			"updated_at":            squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": u.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.db(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "user", u.ID)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("user", u.ID)
	}
	return nil
}

// Exists reports whether a user with the email exists.
func (r *UserRepo) Exists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db(ctx).QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM "+usersTable+" WHERE email = $1)", email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return exists, nil
}

// List returns one page of users and the total count.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]auth.User, int64, error) {
	db := r.db(ctx)
	var total int64
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM "+usersTable).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	sql, args, err := postgres.Builder().
		Select(r.cols...).
		From(usersTable).
		OrderBy("email").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}
	users := []auth.User{}
	if err := pgxscan.Select(ctx, db, &users, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}
