package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stamprally/backend/internal/auth"
	"github.com/stamprally/backend/internal/repository/memory"
)

func newAccountFixture(t *testing.T) *AccountService {
	t.Helper()
	repos := memory.NewRepositories()
	tm := auth.NewTokenManager("access-secret", "refresh-secret", "test-issuer", time.Minute, time.Hour)
	return NewAccountService(repos.Accounts, tm)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAccountFixture(t)
	ctx := context.Background()

	a, err := svc.Register(ctx, "alice", "Alice", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	require.Equal(t, "user", a.Role)
	require.Zero(t, a.Balance)

	pair, logged, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	require.Equal(t, a.ID, logged.ID)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
}

func TestRegisterValidation(t *testing.T) {
	svc := newAccountFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "al", "Alice", "secret1")
	require.Error(t, err, "username shorter than 3 chars")

	_, err = svc.Register(ctx, "alice", "", "secret1")
	require.Error(t, err, "display name required")

	_, err = svc.Register(ctx, "alice", "Alice", "abc")
	require.Error(t, err, "password shorter than 4 chars")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newAccountFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "Alice", "secret1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "Other Alice", "secret2")
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLoginBadCredentials(t *testing.T) {
	svc := newAccountFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "Alice", "secret1")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotatesPair(t *testing.T) {
	svc := newAccountFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "Alice", "secret1")
	require.NoError(t, err)
	pair, _, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, next.AccessToken)

	_, err = svc.Refresh(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidCredentials, "access token must not pass as refresh")
}

func TestChangePassword(t *testing.T) {
	svc := newAccountFixture(t)
	ctx := context.Background()

	a, err := svc.Register(ctx, "alice", "Alice", "secret1")
	require.NoError(t, err)

	require.ErrorIs(t, svc.ChangePassword(ctx, a.ID, "wrong", "newpass"), ErrInvalidCredentials)
	require.Error(t, svc.ChangePassword(ctx, a.ID, "secret1", "abc"))
	require.NoError(t, svc.ChangePassword(ctx, a.ID, "secret1", "newpass"))

	_, _, err = svc.Login(ctx, "alice", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "alice", "newpass")
	require.NoError(t, err)
}

func TestEnsureAdminSeedsOnce(t *testing.T) {
	repos := memory.NewRepositories()
	tm := auth.NewTokenManager("access-secret", "refresh-secret", "test-issuer", time.Minute, time.Hour)
	svc := NewAccountService(repos.Accounts, tm)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "admin123"))

	_, admin, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	require.Equal(t, "admin", admin.Role)

	// Second boot is a no-op even with different credentials.
	require.NoError(t, svc.EnsureAdmin(ctx, "admin2", "other"))
	_, _, err = svc.Login(ctx, "admin2", "other")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
