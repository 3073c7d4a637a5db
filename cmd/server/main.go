package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/mymoolah/walletcore/internal/adapter/http"
	"github.com/mymoolah/walletcore/internal/adapter/http/handler"
	"github.com/mymoolah/walletcore/internal/adapter/http/middleware"
	"github.com/mymoolah/walletcore/internal/adapter/rail"
	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/auth"
	"github.com/mymoolah/walletcore/internal/infrastructure/config"
	"github.com/mymoolah/walletcore/internal/infrastructure/eventpublisher"
	"github.com/mymoolah/walletcore/internal/infrastructure/logger"
	"github.com/mymoolah/walletcore/internal/infrastructure/metrics"
	"github.com/mymoolah/walletcore/internal/infrastructure/worker"
	"github.com/mymoolah/walletcore/internal/usecase"
)

const limiterIdle = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = l

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, l); err != nil {
		l.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, l zerolog.Logger) error {
	st, err := openStores(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer st.close()

	m := metrics.New()
	chart := chartFromConfig(cfg.Ledger)

	ledger := usecase.NewLedgerUseCase(st.txManager, st.accounts, st.journal, st.outbox, st.audit, st.idGen, m)
	if err := ledger.EnsureChart(ctx, chart); err != nil {
		return fmt.Errorf("ensure chart of accounts: %w", err)
	}
	l.Info().Str("bank", chart.Bank).Str("user_wallets", chart.UserWallets).Msg("chart of accounts ready")

	balance := usecase.NewBalanceService(st.wallets, st.walletTxs, st.idGen, m)
	fees := usecase.NewFeeCalculator(st.fees, st.tiers, m)
	deps := &usecase.MovementDeps{
		TxManager: st.txManager,
		Movements: st.movements,
		Wallets:   st.wallets,
		Taxes:     st.taxes,
		Outbox:    st.outbox,
		Audit:     st.audit,
		IDGen:     st.idGen,
		Ledger:    ledger,
		Balance:   balance,
		Fees:      fees,
		Chart:     chart,
		Metrics:   m,
	}

	registry := rail.NewRegistryFromConfig(cfg.Rails, m)
	l.Info().Interface("rails", registry.Rails()).Msg("rail clients configured")

	engine := usecase.NewSettlementEngine(deps)
	poller := usecase.NewPoller(st.movements, registry, engine, usecase.PollConfig{
		InitialDelay: cfg.Polling.InitialDelay,
		Interval:     cfg.Polling.Interval,
		MaxAttempts:  cfg.Polling.MaxAttempts,
		Concurrency:  cfg.Polling.Concurrency,
		QueueSize:    cfg.Polling.QueueSize,
	})
	wallets := usecase.NewWalletUseCase(st.txManager, st.wallets, st.walletTxs, st.audit, st.idGen, balance, ledger, chart)
	vouchers := usecase.NewVoucherUseCase(deps, engine, nil, cfg.Workers.VoucherExpiry)
	payshap := usecase.NewPayShapUseCase(deps, cfg.Workers.RequestToPayExpiry)
	qr := usecase.NewQRPaymentUseCase(deps, engine, registry, cfg.Workers.QRPaymentExpiry).WithTracker(poller)
	deposits := usecase.NewDepositUseCase(deps)
	movements := usecase.NewMovementUseCase(st.movements, st.taxes, engine)
	callbacks := usecase.NewCallbackUseCase(rail.NewCallbackParser(), engine, m)
	sweeps := usecase.NewSweepUseCase(st.movements, engine, poller, m, cfg.Workers.RecoveryStaleAfter, cfg.Workers.SweepBatchSize)
	reconcile := usecase.NewReconciliationUseCase(ledger, st.wallets)
	feeAdmin := usecase.NewFeeAdminUseCase(st.txManager, st.fees, st.tiers, st.idGen)

	dispatch := usecase.NewDispatchUseCase(st.movements, registry, engine).WithTracker(poller)
	relay := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: st.outbox,
		Publisher: eventpublisher.NewRouter(eventpublisher.NewLogPublisher(l)).
			Handle(domain.EventTypeRailDispatch, dispatch),
		Logger:      l,
		Metrics:     m,
		Retrier:     st.retrier,
		BatchSize:   cfg.Workers.OutboxBatchSize,
		MaxAttempts: cfg.Workers.OutboxMaxAttempts,
		Interval:    cfg.Workers.OutboxInterval,
		Retention:   cfg.Workers.OutboxRetention,
	})

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	} else {
		l.Warn().Msg("authentication disabled, trusting identity headers")
	}

	limiter := middleware.NewRateLimiter(cfg.CallbackRatePerSecond, cfg.CallbackRateBurst, "callbacks", m)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		LedgerHandler:      handler.NewLedgerHandler(ledger, reconcile),
		WalletHandler:      handler.NewWalletHandler(wallets),
		FeeHandler:         handler.NewFeeHandler(fees, feeAdmin),
		PaymentHandler:     handler.NewPaymentHandler(vouchers, payshap, qr, deposits),
		MovementHandler:    handler.NewMovementHandler(movements),
		CallbackHandler:    handler.NewCallbackHandler(rail.NewVerifier(rail.CallbackSecrets(cfg.Rails), m), callbacks),
		AdminHandler:       handler.NewAdminHandler(sweeps, relay),
		HealthHandler:      handler.NewHealthHandler(st.health),
		Logger:             l,
		Metrics:            m,
		JWTManager:         jwtManager,
		IdempotencyStore:   st.idempotency,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		CallbackLimiter:    limiter,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	workers := worker.NewGroup(l).
		Add("outbox_relay", relay).
		Add("status_poller", poller).
		Every("expiry_sweep", cfg.Workers.ExpirySweepInterval, func(ctx context.Context) error {
			_, err := sweeps.ExpireOverdue(ctx)
			return err
		}).
		Every("recovery_sweep", cfg.Workers.RecoveryInterval, func(ctx context.Context) error {
			_, err := sweeps.RecoverStale(ctx)
			return err
		}).
		Every("limiter_cleanup", limiterIdle, func(context.Context) error {
			limiter.Cleanup(limiterIdle)
			return nil
		})

	workersDone := make(chan error, 1)
	go func() { workersDone <- workers.Run(workerCtx) }()

	serverErr := make(chan error, 1)
	go func() {
		l.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	workersStopped := false
	select {
	case <-ctx.Done():
		l.Info().Msg("shutting down server...")
	case err := <-serverErr:
		cancelWorkers()
		<-workersDone
		return fmt.Errorf("server failed: %w", err)
	case err := <-workersDone:
		workersStopped = true
		if err != nil {
			l.Error().Err(err).Msg("background worker failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	cancelWorkers()
	if !workersStopped {
		select {
		case <-workersDone:
		case <-shutdownCtx.Done():
			l.Warn().Msg("workers did not stop before shutdown timeout")
		}
	}

	l.Info().Msg("server stopped")
	return nil
}

// chartFromConfig overlays configured account codes on the defaults.
func chartFromConfig(c config.LedgerConfig) usecase.ChartOfAccounts {
	chart := usecase.DefaultChartOfAccounts()
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&chart.Bank, c.BankCode)
	set(&chart.UserWallets, c.UserWalletsCode)
	set(&chart.MerchantFloats, c.MerchantFloatsCode)
	set(&chart.VoucherLiability, c.VoucherLiabilityCode)
	set(&chart.SupplierPayable, c.SupplierPayableCode)
	set(&chart.VATControl, c.VATControlCode)
	set(&chart.FeeRevenue, c.FeeRevenueCode)
	set(&chart.PayShapClearing, c.PayShapClearingCode)
	set(&chart.ZapperClearing, c.ZapperClearingCode)
	set(&chart.CardClearing, c.CardClearingCode)
	set(&chart.EasyPayClearing, c.EasyPayClearingCode)
	return chart
}
