package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mymoolah/walletcore/internal/adapter/http/handler"
	"github.com/mymoolah/walletcore/internal/adapter/repository/memory"
	postgresRepo "github.com/mymoolah/walletcore/internal/adapter/repository/postgres"
	redisRepo "github.com/mymoolah/walletcore/internal/adapter/repository/redis"
	"github.com/mymoolah/walletcore/internal/infrastructure/config"
	"github.com/mymoolah/walletcore/internal/infrastructure/eventpublisher"
	"github.com/mymoolah/walletcore/internal/infrastructure/postgres"
	"github.com/mymoolah/walletcore/internal/infrastructure/redis"
	"github.com/mymoolah/walletcore/internal/usecase"
)

// stores is the repository set of one storage driver.
type stores struct {
	txManager   usecase.TransactionManager
	accounts    usecase.LedgerAccountRepository
	journal     usecase.JournalRepository
	wallets     usecase.WalletRepository
	walletTxs   usecase.WalletTransactionRepository
	movements   usecase.MovementRepository
	taxes       usecase.TaxRepository
	outbox      usecase.OutboxRepository
	audit       usecase.AuditRepository
	fees        usecase.FeeConfigRepository
	tiers       usecase.TierRepository
	idempotency usecase.IdempotencyStore
	idGen       usecase.IDGenerator
	retrier     eventpublisher.Retrier
	health      map[string]handler.Pinger
	closers     []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStores(ctx context.Context, cfg *config.Config, l zerolog.Logger) (*stores, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		l.Warn().Msg("using in-memory storage, state is lost on restart")
		return memoryStores(), nil
	case config.StoragePostgres:
		return postgresStores(ctx, cfg, l)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func memoryStores() *stores {
	store := memory.NewStore()
	return &stores{
		txManager:   memory.NewTxManager(store),
		accounts:    memory.NewAccountRepository(store),
		journal:     memory.NewJournalRepository(store),
		wallets:     memory.NewWalletRepository(store),
		walletTxs:   memory.NewWalletTransactionRepository(store),
		movements:   memory.NewMovementRepository(store),
		taxes:       memory.NewTaxRepository(store),
		outbox:      memory.NewOutboxRepository(store),
		audit:       memory.NewAuditRepository(store),
		fees:        memory.NewFeeConfigRepository(store),
		tiers:       memory.NewTierRepository(store),
		idempotency: memory.NewIdempotencyStore(),
		idGen:       postgresRepo.NewULIDGenerator(),
	}
}

func postgresStores(ctx context.Context, cfg *config.Config, l zerolog.Logger) (*stores, error) {
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:     cfg.DatabaseURL,
		MaxConns:        cfg.DatabaseMaxConns,
		MinConns:        cfg.DatabaseMinConns,
		ConnectAttempts: cfg.DatabaseConnectAttempts,
		ConnectBackoff:  cfg.DatabaseConnectBackoff,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	l.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL,
		redis.WithConnectRetry(cfg.DatabaseConnectAttempts, cfg.DatabaseConnectBackoff))
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	l.Info().Msg("connected to redis")

	cache := redisRepo.NewCache(redisClient)
	return &stores{
		txManager:   postgresRepo.NewTxManager(pool),
		accounts:    postgresRepo.NewLedgerAccountRepository(pool),
		journal:     postgresRepo.NewJournalRepository(pool),
		wallets:     postgresRepo.NewWalletRepository(pool),
		walletTxs:   postgresRepo.NewWalletTransactionRepository(pool),
		movements:   postgresRepo.NewMovementRepository(pool),
		taxes:       postgresRepo.NewTaxRepository(pool),
		outbox:      postgresRepo.NewOutboxRepository(pool),
		audit:       postgresRepo.NewAuditRepository(pool),
		fees:        postgresRepo.NewFeeConfigRepository(pool),
		tiers:       redisRepo.NewCachedTierRepository(postgresRepo.NewTierRepository(pool), cache, cfg.TierCacheTTL),
		idempotency: redisRepo.NewIdempotencyStore(redisClient),
		idGen:       postgresRepo.NewULIDGenerator(),
		retrier:     postgresRepo.NewRetrier().WithLogger(l),
		health: map[string]handler.Pinger{
			"postgres": pool,
			"redis": handler.PingFunc(func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}),
		},
		closers: []func(){
			pool.Close,
			func() { _ = redisClient.Close() },
		},
	}, nil
}
