package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stamprally/backend/internal/api"
	"github.com/stamprally/backend/internal/auth"
	"github.com/stamprally/backend/internal/config"
	"github.com/stamprally/backend/internal/db"
	"github.com/stamprally/backend/internal/logger"
	"github.com/stamprally/backend/internal/metrics"
	"github.com/stamprally/backend/internal/repository"
	"github.com/stamprally/backend/internal/repository/memory"
	"github.com/stamprally/backend/internal/repository/postgres"
	"github.com/stamprally/backend/internal/services"
	"github.com/stamprally/backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var repos repository.Repositories
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("db connect", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		if os.Getenv("APP_MIGRATE") == "true" {
			if err := db.RunMigrations(ctx, pool); err != nil {
				log.Error("migrations", "err", err)
				os.Exit(1)
			}
		}
		repos = postgres.NewRepositories(pool)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory store")
		repos = memory.NewRepositories()
	}

	wp := worker.NewPool(4)
	defer wp.Stop()

	tm := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer,
		15*time.Minute, 30*24*time.Hour)

	accountSvc := services.NewAccountService(repos.Accounts, tm)
	scanSvc := services.NewScanService(repos.Tokens, repos.Tx, cfg.GeofenceRadiusM, cfg.ScanCooldown)
	redeemSvc := services.NewRedeemService(repos.Prizes, repos.Tx)
	tokenSvc := services.NewTokenService(repos.Tokens, repos.AuditLogs, wp)
	prizeSvc := services.NewPrizeService(repos.Prizes, repos.AuditLogs, wp)
	reportSvc := services.NewReportingService(repos.Accounts, repos.Ledger)

	if err := accountSvc.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Error("seed admin", "err", err)
		os.Exit(1)
	}

	metrics.Init()
	r := api.NewRouter(api.RouterDeps{
		Cfg:      cfg,
		TM:       tm,
		Accounts: accountSvc,
		Scans:    scanSvc,
		Redeems:  redeemSvc,
		Tokens:   tokenSvc,
		Prizes:   prizeSvc,
		Reports:  reportSvc,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
