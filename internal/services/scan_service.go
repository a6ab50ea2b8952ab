package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/stamprally/backend/internal/geo"
	"github.com/stamprally/backend/internal/metrics"
	"github.com/stamprally/backend/internal/models"
	repo "github.com/stamprally/backend/internal/repository"
)

// ScanService turns a QR scan into an earn commit: resolve the token,
// check the geofence, check the cooldown window, then atomically credit
// the account, record the scan and append the ledger entry.
type ScanService struct {
	tokens   repo.Tokens
	tx       repo.TxRunner
	radiusM  float64
	cooldown time.Duration
	now      func() time.Time
}

func NewScanService(tokens repo.Tokens, tx repo.TxRunner, radiusMeters float64, cooldown time.Duration) *ScanService {
	return &ScanService{
		tokens:   tokens,
		tx:       tx,
		radiusM:  radiusMeters,
		cooldown: cooldown,
		now:      time.Now,
	}
}

type ScanResult struct {
	PointsEarned int64  `json:"points_earned"`
	Balance      int64  `json:"balance"`
	TokenLabel   string `json:"token_label"`
}

func (s *ScanService) Scan(ctx context.Context, accountID, code string, lat, lng float64) (ScanResult, error) {
	token, err := s.tokens.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ScanResult{}, ErrTokenNotFound
		}
		return ScanResult{}, err
	}
	if !token.Active {
		return ScanResult{}, ErrTokenNotFound
	}

	dist, inRange := geo.WithinRadius(
		geo.Point{Lat: token.Lat, Lng: token.Lng},
		geo.Point{Lat: lat, Lng: lng},
		s.radiusM,
	)
	if !inRange {
		return ScanResult{}, &OutOfRangeError{
			DistanceMeters: int(math.Round(dist)),
			RadiusMeters:   int(s.radiusM),
		}
	}

	var res ScanResult
	err = commitWithRetry(ctx, s.tx, func(tx repo.Tx) error {
		now := s.now()
		acct, err := tx.AccountForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		// Cooldown re-checked under the account lock: a racing duplicate
		// scan blocks here and then sees the winner's record.
		last, scanned, err := tx.LastScanAt(ctx, acct.ID, token.ID, now.Add(-s.cooldown))
		if err != nil {
			return err
		}
		if scanned {
			return &AlreadyScannedError{NextEligibleAt: last.Add(s.cooldown)}
		}
		balance, err := tx.AddBalance(ctx, acct.ID, token.RewardPoints)
		if err != nil {
			return err
		}
		if err := tx.RecordScan(ctx, acct.ID, token.ID, now); err != nil {
			return err
		}
		tokenID := token.ID
		if err := tx.AppendEntry(ctx, models.LedgerEntry{
			AccountID:   acct.ID,
			Delta:       token.RewardPoints,
			Kind:        models.KindEarn,
			TokenID:     &tokenID,
			Description: fmt.Sprintf("earned via %q", token.Label),
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		res = ScanResult{PointsEarned: token.RewardPoints, Balance: balance, TokenLabel: token.Label}
		return nil
	})
	if err != nil {
		return ScanResult{}, err
	}
	metrics.ScansTotal.Inc()
	return res, nil
}
