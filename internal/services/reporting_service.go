package services

import (
	"context"

	"github.com/stamprally/backend/internal/models"
	repo "github.com/stamprally/backend/internal/repository"
)

// ReportingService serves read-only history and admin views over the
// ledger. It never mutates anything.
type ReportingService struct {
	accounts repo.Accounts
	ledger   repo.Ledger
}

func NewReportingService(accounts repo.Accounts, ledger repo.Ledger) *ReportingService {
	return &ReportingService{accounts: accounts, ledger: ledger}
}

func (s *ReportingService) History(ctx context.Context, accountID string, limit, offset int) ([]models.LedgerEntryDetail, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.ledger.ListByAccount(ctx, accountID, limit, offset)
}

func (s *ReportingService) RecentHistory(ctx context.Context, limit int) ([]models.LedgerEntryDetail, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	return s.ledger.ListRecent(ctx, limit)
}

func (s *ReportingService) Users(ctx context.Context) ([]models.Account, error) {
	return s.accounts.List(ctx)
}

func (s *ReportingService) Stats(ctx context.Context) (models.Stats, error) {
	return s.ledger.Stats(ctx)
}
