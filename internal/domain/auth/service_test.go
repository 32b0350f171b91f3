package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/tx"
)

type memUsers struct {
	byID map[id.ID]*User
}

func (m *memUsers) Create(ctx context.Context, u *User) error {
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	u, ok := m.byID[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID)
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

func (m *memUsers) Update(ctx context.Context, u *User) error {
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) Exists(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}

func (m *memUsers) List(ctx context.Context, limit, offset int) ([]User, int64, error) {
	return nil, int64(len(m.byID)), nil
}

type memTokens struct {
	byHash map[string]*RefreshToken
}

func (m *memTokens) SaveRefreshToken(ctx context.Context, t *RefreshToken) error {
	m.byHash[t.TokenHash] = t
	return nil
}

func (m *memTokens) GetRefreshToken(ctx context.Context, hash string) (*RefreshToken, error) {
	t, ok := m.byHash[hash]
	if !ok {
		return nil, apperror.NewNotFound("refresh_token", "")
	}
	return t, nil
}

func (m *memTokens) RevokeRefreshToken(ctx context.Context, tokenID id.ID) error {
	for _, t := range m.byHash {
		if t.ID == tokenID {
			now := time.Now()
			t.RevokedAt = &now
		}
	}
	return nil
}

func (m *memTokens) RevokeAllUserTokens(ctx context.Context, userID id.ID) error {
	for _, t := range m.byHash {
		if t.UserID == userID {
			now := time.Now()
			t.RevokedAt = &now
		}
	}
	return nil
}

func (m *memTokens) CleanupExpiredTokens(ctx context.Context) (int64, error) { return 0, nil }

func newTestService() (*Service, *memUsers) {
	users := &memUsers{byID: map[id.ID]*User{}}
	tokens := &memTokens{byHash: map[string]*RefreshToken{}}
	cfg := DefaultServiceConfig()
	cfg.BcryptCost = bcrypt.MinCost
	cfg.MaxLoginAttempts = 2
	svc := NewService(users, tokens, &tx.MockManager{}, NewJWTService(DefaultJWTConfig("test-secret")), cfg)
	return svc, users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Email: " Clerk@Example.com ", Password: "password1", Roles: []string{RoleClerk}})
	require.NoError(t, err)
	assert.Equal(t, "clerk@example.com", user.Email)
	assert.False(t, user.IsAdmin)

	_, err = svc.Register(ctx, RegisterRequest{Email: "clerk@example.com", Password: "password1"})
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))

	pair, logged, err := svc.Login(ctx, Credentials{Email: "CLERK@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Contains(t, logged.Permissions, PermDocumentWrite)
	assert.NotContains(t, logged.Permissions, PermReportRead)

	uc, err := svc.jwt.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), uc.UserID)
	assert.Equal(t, []string{RoleClerk}, uc.Roles)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@b.c", Password: "short"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = svc.Register(ctx, RegisterRequest{Email: "a@b.c", Password: "password1", Roles: []string{"root"}})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestLogin_LocksAfterFailures(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterRequest{Email: "u@example.com", Password: "password1"})
	require.NoError(t, err)

	for range 2 {
		_, _, err = svc.Login(ctx, Credentials{Email: "u@example.com", Password: "wrong"})
		assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
	}

	_, _, err = svc.Login(ctx, Credentials{Email: "u@example.com", Password: "password1"})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
}

func TestRefresh_RotatesToken(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterRequest{Email: "u@example.com", Password: "password1"})
	require.NoError(t, err)
	pair, _, err := svc.Login(ctx, Credentials{Email: "u@example.com", Password: "password1"})
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))

	_, err = svc.Refresh(ctx, "garbage")
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}

func TestValidateToken_RejectsForeignSecret(t *testing.T) {
	user := NewUser("a@example.com", "", []string{RoleAdmin})
	token, _, err := NewJWTService(DefaultJWTConfig("one")).GenerateAccessToken(user)
	require.NoError(t, err)

	_, err = NewJWTService(DefaultJWTConfig("two")).ValidateToken(token)
	assert.Error(t, err)

	uc, err := NewJWTService(DefaultJWTConfig("one")).ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, uc.IsAdmin)
}

func TestPermissionsFor(t *testing.T) {
	perms := PermissionsFor([]string{RoleClerk, RoleViewer})
	assert.Equal(t, []string{
		PermCatalogRead, PermDocumentRead, PermDocumentWrite, PermPaymentRead, PermReportRead,
	}, perms)
	assert.Empty(t, PermissionsFor(nil))
}
