package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stamprally/backend/internal/repository"
)

func NewRepositories(pool *pgxpool.Pool) repository.Repositories {
	return repository.Repositories{
		Accounts:  &accountsRepo{pool},
		Tokens:    &tokensRepo{pool},
		Prizes:    &prizesRepo{pool},
		Ledger:    &ledgerRepo{pool},
		AuditLogs: &auditLogsRepo{pool},
		Tx:        &txRunner{pool},
	}
}
