package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mymoolah/walletcore/internal/adapter/http/handler"
	"github.com/mymoolah/walletcore/internal/adapter/http/middleware"
	"github.com/mymoolah/walletcore/internal/infrastructure/auth"
	"github.com/mymoolah/walletcore/internal/infrastructure/metrics"
	"github.com/mymoolah/walletcore/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	LedgerHandler   *handler.LedgerHandler
	WalletHandler   *handler.WalletHandler
	FeeHandler      *handler.FeeHandler
	PaymentHandler  *handler.PaymentHandler
	MovementHandler *handler.MovementHandler
	CallbackHandler *handler.CallbackHandler
	AdminHandler    *handler.AdminHandler
	HealthHandler   *handler.HealthHandler

	Logger  zerolog.Logger
	Metrics *metrics.Metrics
	// Gatherer backs /metrics; nil serves the default registry.
	Gatherer prometheus.Gatherer

	// JWTManager authenticates /api/v1. Nil trusts the X-User-ID header.
	JWTManager *auth.JWTManager

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	CallbackLimiter    *middleware.RateLimiter
	CORSAllowedOrigins []string
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins(cfg.CORSAllowedOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.IdempotencyKeyHeader, middleware.UserIDHeader},
		ExposedHeaders:   []string{chimiddleware.RequestIDHeader, middleware.IdempotencyReplayHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Rails authenticate with signatures, not bearer tokens.
	r.Group(func(r chi.Router) {
		if cfg.CallbackLimiter != nil {
			r.Use(cfg.CallbackLimiter.Limit)
		}
		r.Post("/callbacks/{rail}", cfg.CallbackHandler.Receive)
	})

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		} else {
			r.Use(middleware.DevIdentity)
		}
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
		}

		r.Route("/ledger", func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleOperator))
			r.Get("/accounts", cfg.LedgerHandler.ListAccounts)
			r.Get("/accounts/{code}", cfg.LedgerHandler.GetAccount)
			r.Get("/entries/{reference}", cfg.LedgerHandler.GetEntry)
			r.Get("/trial-balance", cfg.LedgerHandler.TrialBalance)
			r.Get("/consistency", cfg.LedgerHandler.CheckConsistency)
			r.Get("/reconciliation", cfg.LedgerHandler.Reconciliation)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(auth.RoleAdmin))
				r.Post("/accounts", cfg.LedgerHandler.CreateAccount)
				r.Patch("/accounts/{code}", cfg.LedgerHandler.RenameAccount)
				r.Post("/entries", cfg.LedgerHandler.PostEntry)
			})
		})

		r.Route("/wallets", func(r chi.Router) {
			r.Post("/", cfg.WalletHandler.Create)
			r.Get("/", cfg.WalletHandler.List)
			r.Get("/{id}", cfg.WalletHandler.Get)
			r.Get("/{id}/transactions", cfg.WalletHandler.Transactions)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(auth.RoleOperator))
				r.Post("/{id}/fund", cfg.WalletHandler.Fund)
				r.Put("/{id}/status", cfg.WalletHandler.SetStatus)
			})
		})

		r.Post("/fees/quote", cfg.FeeHandler.Quote)

		r.Route("/vouchers", func(r chi.Router) {
			r.Post("/", cfg.PaymentHandler.IssueVoucher)
			r.Post("/cash-out", cfg.PaymentHandler.IssueCashOutVoucher)
			r.Post("/top-up", cfg.PaymentHandler.IssueTopUpVoucher)
			r.Post("/redeem", cfg.PaymentHandler.RedeemVoucher)
			r.Post("/{reference}/cancel", cfg.PaymentHandler.CancelVoucher)
		})

		r.Post("/payshap/rpp", cfg.PaymentHandler.PayShapRPP)
		r.Post("/payshap/rtp", cfg.PaymentHandler.PayShapRTP)
		r.Post("/qr/payments", cfg.PaymentHandler.PayQR)
		r.Post("/deposits", cfg.PaymentHandler.Deposit)

		r.Route("/movements/{reference}", func(r chi.Router) {
			r.Get("/", cfg.MovementHandler.Get)
			r.Get("/status", cfg.MovementHandler.Status)
			r.Get("/taxes", cfg.MovementHandler.Taxes)
			r.Post("/cancel", cfg.MovementHandler.Cancel)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin))
			r.Post("/fees", cfg.FeeHandler.Configure)
			r.Put("/users/{userID}/tier", cfg.FeeHandler.SetTier)
			r.Post("/sweeps/expire", cfg.AdminHandler.ExpireSweep)
			r.Post("/sweeps/recover", cfg.AdminHandler.RecoverySweep)
			r.Post("/outbox/flush", cfg.AdminHandler.FlushOutbox)
		})
	})

	return r
}

func origins(configured []string) []string {
	if len(configured) == 0 {
		return []string{"*"}
	}
	return configured
}
