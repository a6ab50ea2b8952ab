package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/stamprally/backend/internal/api/handlers"
	"github.com/stamprally/backend/internal/auth"
	"github.com/stamprally/backend/internal/config"
	"github.com/stamprally/backend/internal/metrics"
	"github.com/stamprally/backend/internal/middleware"
	"github.com/stamprally/backend/internal/services"
)

type RouterDeps struct {
	Cfg      config.Config
	TM       *auth.TokenManager
	Accounts *services.AccountService
	Scans    *services.ScanService
	Redeems  *services.RedeemService
	Tokens   *services.TokenService
	Prizes   *services.PrizeService
	Reports  *services.ReportingService
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(d.Cfg.RateRPS), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	authH := handlers.NewAuthHandler(d.Accounts)
	pointsH := handlers.NewPointsHandler(d.Scans, d.Redeems, d.Reports)
	tokensH := handlers.NewTokensHandler(d.Tokens)
	prizesH := handlers.NewPrizesHandler(d.Prizes)
	adminH := handlers.NewAdminHandler(d.Reports)
	authMW := middleware.NewAuthMiddleware(d.TM)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(authMW.Auth)

			r.Get("/auth/me", authH.Me)
			r.Post("/auth/change-password", authH.ChangePassword)

			r.Post("/points/scan", pointsH.Scan)
			r.Post("/points/redeem/{prizeID}", pointsH.Redeem)
			r.Get("/points/history", pointsH.History)

			r.Get("/prizes", prizesH.ListActive)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("admin"))

				r.Post("/prizes", prizesH.Create)
				r.Get("/prizes/all", prizesH.ListAll)
				r.Patch("/prizes/{id}", prizesH.Update)
				r.Delete("/prizes/{id}", prizesH.Delete)

				r.Post("/tokens", tokensH.Create)
				r.Get("/tokens", tokensH.List)
				r.Patch("/tokens/{id}/toggle", tokensH.Toggle)
				r.Patch("/tokens/{id}/location", tokensH.Relocate)
				r.Delete("/tokens/{id}", tokensH.Delete)

				r.Get("/admin/users", adminH.Users)
				r.Get("/admin/history", adminH.History)
				r.Get("/admin/users/{id}/history", adminH.UserHistory)
				r.Get("/admin/stats", adminH.Stats)
			})
		})
	})

	return r
}
