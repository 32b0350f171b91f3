package auth_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/domain/auth"
	"tradedesk/internal/infrastructure/storage/postgres"
)

type TokenRepo struct {
	txm *postgres.TxManager
}

// NewTokenRepo creates a new refresh token repository.
func NewTokenRepo(txm *postgres.TxManager) *TokenRepo {
	return &TokenRepo{txm: txm}
}

var _ auth.TokenRepository = (*TokenRepo)(nil)

// SaveRefreshToken stores a token by its hash.
func (r *TokenRepo) SaveRefreshToken(ctx context.Context, t *auth.RefreshToken) error {
	_, err := r.txm.GetQuerier(ctx).Exec(ctx,
		`INSERT INTO `+tokensTable+` (id, user_id, token_hash, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.CreatedAt)
	if err != nil {
		return postgres.MapError(err, "refresh_token", t.ID)
	}
	return nil
}

// GetRefreshToken looks a token up by its hash.
func (r *TokenRepo) GetRefreshToken(ctx context.Context, tokenHash string) (*auth.RefreshToken, error) {
	var t auth.RefreshToken
	err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &t,
		`SELECT id, user_id, token_hash, expires_at, created_at, revoked_at FROM `+tokensTable+` WHERE token_hash = $1`,
		tokenHash)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("refresh_token", "")
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	return &t, nil
}

// RevokeRefreshToken marks one token revoked.
func (r *TokenRepo) RevokeRefreshToken(ctx context.Context, tokenID id.ID) error {
	_, err := r.txm.GetQuerier(ctx).Exec(ctx,
		`UPDATE `+tokensTable+` SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL`, tokenID)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllUserTokens revokes every live token of the user.
func (r *TokenRepo) RevokeAllUserTokens(ctx context.Context, userID id.ID) error {
	_, err := r.txm.GetQuerier(ctx).Exec(ctx,
		`UPDATE `+tokensTable+` SET revoked_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL`, userID)
	if err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}
	return nil
}

// CleanupExpiredTokens deletes expired and revoked tokens and returns how many.
func (r *TokenRepo) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx,
		`DELETE FROM `+tokensTable+` WHERE expires_at < $1 OR revoked_at IS NOT NULL`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("cleanup refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
