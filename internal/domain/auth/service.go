package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/tx"
	"tradedesk/pkg/logger"
)

type ServiceConfig struct {
	MaxLoginAttempts   int
	LockDuration       time.Duration
	PasswordMinLength  int
	RefreshTokenExpiry time.Duration
	BcryptCost         int
}

// DefaultServiceConfig locks an account for 15 minutes after 5 failed logins.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts:   5,
		LockDuration:       15 * time.Minute,
		PasswordMinLength:  8,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
		BcryptCost:         bcrypt.DefaultCost,
	}
}

// Service registers users and issues token pairs.
type Service struct {
	users     UserRepository
	tokens    TokenRepository
	txManager tx.Manager
	jwt       *JWTService
	config    ServiceConfig
	now       func() time.Time
}

// NewService creates an auth service.
func NewService(users UserRepository, tokens TokenRepository, txManager tx.Manager, jwt *JWTService, config ServiceConfig) *Service {
	return &Service{
		users:     users,
		tokens:    tokens,
		txManager: txManager,
		jwt:       jwt,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a user. Without roles the user becomes a viewer.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if len(req.Password) < s.config.PasswordMinLength {
		return nil, apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}
	roles := req.Roles
	if len(roles) == 0 {
		roles = []string{RoleViewer}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := NewUser(req.Email, string(hash), roles)
	user.FullName = req.FullName
	if err := user.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.users.Exists(ctx, user.Email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return apperror.NewConflict("email already registered").WithDetail("email", user.Email)
		}
		return s.users.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Login checks credentials and returns a fresh token pair.
func (s *Service) Login(ctx context.Context, creds Credentials) (*TokenPair, *User, error) {
	now := s.now()
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(creds.Email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, nil, err
	}
	if err := user.CanLogin(now); err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		user.RecordFailedLogin(now, s.config.MaxLoginAttempts, s.config.LockDuration)
		if uerr := s.users.Update(ctx, user); uerr != nil {
			logger.Warn(ctx, "failed to record login failure", "user_id", user.ID, "error", uerr)
		}
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	user.LoadPermissions()
	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	user.RecordSuccessfulLogin(now)
	if err := s.users.Update(ctx, user); err != nil {
		logger.Warn(ctx, "failed to record login", "user_id", user.ID, "error", err)
	}

	logger.Info(ctx, "user logged in", "user_id", user.ID)
	return pair, user, nil
}

// Refresh rotates a refresh token. The old token is revoked.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	now := s.now()
	stored, err := s.tokens.GetRefreshToken(ctx, hashToken(refreshToken))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid refresh token")
		}
		return nil, err
	}
	if !stored.IsValid(now) {
		return nil, apperror.NewUnauthorized("refresh token expired or revoked")
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, apperror.NewUnauthorized("user not found")
	}
	if err := user.CanLogin(now); err != nil {
		return nil, err
	}
	user.LoadPermissions()

	if err := s.tokens.RevokeRefreshToken(ctx, stored.ID); err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}
	return s.issue(ctx, user)
}

// Logout revokes every refresh token of the user.
func (s *Service) Logout(ctx context.Context, userID id.ID) error {
	return s.tokens.RevokeAllUserTokens(ctx, userID)
}

// Me returns the user with permissions resolved.
func (s *Service) Me(ctx context.Context, userID id.ID) (*User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.LoadPermissions()
	return user, nil
}

// ListUsers returns one page of users. The limit defaults to 50, max 500.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]User, int64, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.users.List(ctx, limit, max(offset, 0))
}

// EnsureAdmin creates the admin account if the email is not registered yet.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	exists, err := s.users.Exists(ctx, NormalizeEmail(email))
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if _, err := s.Register(ctx, RegisterRequest{Email: email, Password: password, FullName: "Administrator", Roles: []string{RoleAdmin}}); err != nil {
		return false, err
	}
	return true, nil
}

// CleanupTokens removes expired refresh tokens.
func (s *Service) CleanupTokens(ctx context.Context) (int64, error) {
	return s.tokens.CleanupExpiredTokens(ctx)
}

func (s *Service) issue(ctx context.Context, user *User) (*TokenPair, error) {
	access, expiresAt, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	raw, err := randomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	now := s.now()
	if err := s.tokens.SaveRefreshToken(ctx, &RefreshToken{
		ID:        id.New(),
		UserID:    user.ID,
		TokenHash: hashToken(raw),
		ExpiresAt: now.Add(s.config.RefreshTokenExpiry),
		CreatedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: raw,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, nil
}
