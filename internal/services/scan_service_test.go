package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stamprally/backend/internal/models"
	repo "github.com/stamprally/backend/internal/repository"
	"github.com/stamprally/backend/internal/repository/memory"
)

const (
	anchorLat = 35.0
	anchorLng = 135.0
)

func newScanFixture(t *testing.T) (repo.Repositories, *ScanService, models.Account, models.Token) {
	t.Helper()
	repos := memory.NewRepositories()
	ctx := context.Background()

	acct, err := repos.Accounts.Create(ctx, models.Account{
		Username: "alice", DisplayName: "Alice", PasswordHash: "x", Role: "user",
	})
	require.NoError(t, err)

	token, err := repos.Tokens.Create(ctx, models.Token{
		Code: "code-1", Label: "Station A", RewardPoints: 10,
		Lat: anchorLat, Lng: anchorLng, Active: true,
	})
	require.NoError(t, err)

	svc := NewScanService(repos.Tokens, repos.Tx, 100, 24*time.Hour)
	return repos, svc, acct, token
}

func TestScanCreditsAccount(t *testing.T) {
	repos, svc, acct, token := newScanFixture(t)
	ctx := context.Background()

	res, err := svc.Scan(ctx, acct.ID, token.Code, anchorLat, anchorLng)
	require.NoError(t, err)
	require.Equal(t, int64(10), res.PointsEarned)
	require.Equal(t, int64(10), res.Balance)
	require.Equal(t, "Station A", res.TokenLabel)

	stored, err := repos.Accounts.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	require.Equal(t, int64(10), stored.Balance)

	entries, err := repos.Ledger.ListByAccount(ctx, acct.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, models.KindEarn, entries[0].Kind)
	require.Equal(t, int64(10), entries[0].Delta)
	require.NotNil(t, entries[0].TokenID)
	require.Equal(t, token.ID, *entries[0].TokenID)
}

func TestScanUnknownCode(t *testing.T) {
	_, svc, acct, _ := newScanFixture(t)

	_, err := svc.Scan(context.Background(), acct.ID, "no-such-code", anchorLat, anchorLng)
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestScanInactiveToken(t *testing.T) {
	repos, svc, acct, token := newScanFixture(t)
	ctx := context.Background()

	_, err := repos.Tokens.SetActive(ctx, token.ID, false)
	require.NoError(t, err)

	_, err = svc.Scan(ctx, acct.ID, token.Code, anchorLat, anchorLng)
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestScanOutOfRange(t *testing.T) {
	repos, svc, acct, token := newScanFixture(t)
	ctx := context.Background()

	// ~150m north of the anchor.
	_, err := svc.Scan(ctx, acct.ID, token.Code, anchorLat+0.00134899, anchorLng)

	var oor *OutOfRangeError
	require.ErrorAs(t, err, &oor)
	require.Equal(t, 150, oor.DistanceMeters)
	require.Equal(t, 100, oor.RadiusMeters)

	stored, err := repos.Accounts.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	require.Zero(t, stored.Balance)

	entries, err := repos.Ledger.ListByAccount(ctx, acct.ID, 10, 0)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestScanCooldownWindow(t *testing.T) {
	repos, svc, acct, token := newScanFixture(t)
	ctx := context.Background()

	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t0 }

	_, err := svc.Scan(ctx, acct.ID, token.Code, anchorLat, anchorLng)
	require.NoError(t, err)

	// An hour later the same token is still in cooldown.
	svc.now = func() time.Time { return t0.Add(time.Hour) }
	_, err = svc.Scan(ctx, acct.ID, token.Code, anchorLat, anchorLng)
	var already *AlreadyScannedError
	require.ErrorAs(t, err, &already)
	require.Equal(t, t0.Add(24*time.Hour), already.NextEligibleAt)

	// One second short of the window still fails.
	svc.now = func() time.Time { return t0.Add(24*time.Hour - time.Second) }
	_, err = svc.Scan(ctx, acct.ID, token.Code, anchorLat, anchorLng)
	require.ErrorAs(t, err, &already)

	// Exactly 24h later the scan is eligible again.
	svc.now = func() time.Time { return t0.Add(24 * time.Hour) }
	res, err := svc.Scan(ctx, acct.ID, token.Code, anchorLat, anchorLng)
	require.NoError(t, err)
	require.Equal(t, int64(20), res.Balance)

	stored, err := repos.Accounts.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	require.Equal(t, int64(20), stored.Balance)
}

func TestScanCooldownIsPerToken(t *testing.T) {
	repos, svc, acct, token := newScanFixture(t)
	ctx := context.Background()

	other, err := repos.Tokens.Create(ctx, models.Token{
		Code: "code-2", Label: "Station B", RewardPoints: 5,
		Lat: anchorLat, Lng: anchorLng, Active: true,
	})
	require.NoError(t, err)

	_, err = svc.Scan(ctx, acct.ID, token.Code, anchorLat, anchorLng)
	require.NoError(t, err)

	res, err := svc.Scan(ctx, acct.ID, other.Code, anchorLat, anchorLng)
	require.NoError(t, err)
	require.Equal(t, int64(15), res.Balance)
}

func TestScanRejectedLeavesNoScanRecord(t *testing.T) {
	_, svc, acct, token := newScanFixture(t)
	ctx := context.Background()

	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t0 }
	_, err := svc.Scan(ctx, acct.ID, token.Code, anchorLat, anchorLng)
	require.NoError(t, err)

	// A rejected replay must not extend the window: the next eligible
	// time stays anchored to the first successful scan.
	svc.now = func() time.Time { return t0.Add(23 * time.Hour) }
	_, err = svc.Scan(ctx, acct.ID, token.Code, anchorLat, anchorLng)
	var already *AlreadyScannedError
	require.ErrorAs(t, err, &already)
	require.Equal(t, t0.Add(24*time.Hour), already.NextEligibleAt)

	svc.now = func() time.Time { return t0.Add(24 * time.Hour) }
	_, err = svc.Scan(ctx, acct.ID, token.Code, anchorLat, anchorLng)
	require.NoError(t, err)
}
