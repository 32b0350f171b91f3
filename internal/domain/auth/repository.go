package auth

import (
	"context"

	"tradedesk/internal/core/id"
)

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID id.ID) (*User, error)
	// GetByEmail expects a normalized email.
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	Exists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]User, int64, error)
}

type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenID id.ID) error
	RevokeAllUserTokens(ctx context.Context, userID id.ID) error
	// CleanupExpiredTokens deletes expired or revoked tokens and returns the count.
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}
