package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stamprally/backend/internal/metrics"
	"github.com/stamprally/backend/internal/models"
	repo "github.com/stamprally/backend/internal/repository"
)

// RedeemService commits a spend: resolve the prize, then atomically
// re-check stock and balance under row locks, debit the account,
// decrement the stock and append the ledger entry.
type RedeemService struct {
	prizes repo.Prizes
	tx     repo.TxRunner
	now    func() time.Time
}

func NewRedeemService(prizes repo.Prizes, tx repo.TxRunner) *RedeemService {
	return &RedeemService{prizes: prizes, tx: tx, now: time.Now}
}

type RedeemResult struct {
	PointsSpent int64  `json:"points_spent"`
	Balance     int64  `json:"balance"`
	PrizeName   string `json:"prize_name"`
}

func (s *RedeemService) Redeem(ctx context.Context, accountID, prizeID string) (RedeemResult, error) {
	prize, err := s.prizes.GetByID(ctx, prizeID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return RedeemResult{}, ErrPrizeNotFound
		}
		return RedeemResult{}, err
	}
	if !prize.Active {
		return RedeemResult{}, ErrPrizeNotFound
	}

	var res RedeemResult
	err = commitWithRetry(ctx, s.tx, func(tx repo.Tx) error {
		// Lock order is prize before account. Scans lock only the
		// account, so the two engines cannot deadlock each other.
		p, err := tx.PrizeForUpdate(ctx, prize.ID)
		if err != nil {
			return err
		}
		if !p.Active {
			return ErrPrizeNotFound
		}
		if p.Stock <= 0 {
			return ErrOutOfStock
		}
		acct, err := tx.AccountForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if acct.Balance < p.PointsRequired {
			return &InsufficientPointsError{Required: p.PointsRequired, Available: acct.Balance}
		}
		balance, err := tx.AddBalance(ctx, acct.ID, -p.PointsRequired)
		if err != nil {
			return err
		}
		if err := tx.DecrementStock(ctx, p.ID); err != nil {
			return err
		}
		prizeRef := p.ID
		if err := tx.AppendEntry(ctx, models.LedgerEntry{
			AccountID:   acct.ID,
			Delta:       -p.PointsRequired,
			Kind:        models.KindSpend,
			PrizeID:     &prizeRef,
			Description: fmt.Sprintf("redeemed %q", p.Name),
			CreatedAt:   s.now(),
		}); err != nil {
			return err
		}
		res = RedeemResult{PointsSpent: p.PointsRequired, Balance: balance, PrizeName: p.Name}
		return nil
	})
	if err != nil {
		return RedeemResult{}, err
	}
	metrics.RedemptionsTotal.Inc()
	return res, nil
}
