// internal/service/auth/auth_service_test.go
package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"beedab-service/internal/domain/auth"
	xerrors "beedab-service/internal/pkg/errors"
	"beedab-service/internal/pkg/jwt"
	"beedab-service/internal/pkg/session"
)

type fakeUserStore struct {
	users  map[int64]*auth.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[int64]*auth.User{}}
}

func (f *fakeUserStore) Create(ctx context.Context, user *auth.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return xerrors.ErrConflict
		}
	}
	f.nextID++
	user.ID = f.nextID
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.FindByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func newTestService(t *testing.T) (*Service, *fakeUserStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	tokens, err := jwt.BuildEphemeral(jwt.Config{
		Issuer:   "beedab-test",
		Audience: "beedab-api",
		TTL:      15 * time.Minute,
	})
	require.NoError(t, err)

	users := newFakeUserStore()
	svc := NewService(users, tokens, session.NewManager(client), zap.NewNop())
	return svc, users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, &auth.RegisterRequest{
		Email:    "Jo@Example.com",
		Password: "s3cret-pass",
		FullName: "Jo Tester",
	}, "127.0.0.1", "go-test")
	require.NoError(t, err)
	assert.NotEmpty(t, reg.AccessToken)
	assert.NotEmpty(t, reg.RefreshToken)
	assert.Equal(t, "jo@example.com", reg.User.Email, "email normalized to lowercase")
	assert.Equal(t, auth.RoleUser, reg.User.Role)

	// Duplicate registration is rejected.
	_, err = svc.Register(ctx, &auth.RegisterRequest{Email: "jo@example.com", Password: "whatever1"}, "", "")
	assert.ErrorIs(t, err, xerrors.ErrConflict)

	login, err := svc.Login(ctx, &auth.LoginRequest{Email: "jo@example.com", Password: "s3cret-pass"}, "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, login.AccessToken)

	_, err = svc.Login(ctx, &auth.LoginRequest{Email: "jo@example.com", Password: "wrong"}, "", "")
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)

	_, err = svc.Login(ctx, &auth.LoginRequest{Email: "nobody@example.com", Password: "whatever1"}, "", "")
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestValidateAccessTokenAndLogout(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, &auth.RegisterRequest{Email: "jo@example.com", Password: "s3cret-pass"}, "", "")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(ctx, reg.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.IdentityID)
	assert.Equal(t, "user", claims.Role)

	// Refresh tokens are not valid as access tokens.
	_, err = svc.ValidateAccessToken(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)

	// After logout the token still has a valid signature but no
	// live session.
	require.NoError(t, svc.Logout(ctx, claims.IdentityID, claims.ID))
	_, err = svc.ValidateAccessToken(ctx, reg.AccessToken)
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestRefresh(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, &auth.RegisterRequest{Email: "jo@example.com", Password: "s3cret-pass"}, "", "")
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, reg.RefreshToken, "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, next.AccessToken)

	_, err = svc.ValidateAccessToken(ctx, next.AccessToken)
	require.NoError(t, err)

	// An access token cannot be used to refresh.
	_, err = svc.Refresh(ctx, reg.AccessToken, "", "")
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestLogoutAll(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, &auth.RegisterRequest{Email: "jo@example.com", Password: "s3cret-pass"}, "", "")
	require.NoError(t, err)
	login, err := svc.Login(ctx, &auth.LoginRequest{Email: "jo@example.com", Password: "s3cret-pass"}, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.LogoutAll(ctx, reg.User.ID))

	_, err = svc.ValidateAccessToken(ctx, reg.AccessToken)
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
	_, err = svc.ValidateAccessToken(ctx, login.AccessToken)
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestEnsureSuperAdminExists(t *testing.T) {
	svc, users := newTestService(t)
	ctx := context.Background()

	t.Setenv("SUPER_ADMIN_EMAIL", "root@beedab.com")
	t.Setenv("SUPER_ADMIN_PASSWORD", "very-secret-1")

	require.NoError(t, svc.EnsureSuperAdminExists(ctx))
	admin, err := users.FindByEmail(ctx, "root@beedab.com")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, admin.Role)

	// Idempotent on restart.
	require.NoError(t, svc.EnsureSuperAdminExists(ctx))
	assert.Len(t, users.users, 1)
}
