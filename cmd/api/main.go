package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coins-wallet/config"
	httpHandler "coins-wallet/internal/adapter/http/handler"
	"coins-wallet/internal/adapter/storage/memory"
	pgStorage "coins-wallet/internal/adapter/storage/postgres"
	redisStorage "coins-wallet/internal/adapter/storage/redis"
	"coins-wallet/internal/core/ports"
	"coins-wallet/internal/service"
	"coins-wallet/pkg/logger"
	"coins-wallet/pkg/pagination"

	"github.com/rs/zerolog"
)

// storage bundles the repositories of the selected driver.
type storage struct {
	users      ports.UserRepository
	wallets    ports.WalletRepository
	transfers  ports.TransferRepository
	audit      ports.AuditRepository
	transactor ports.DBTransactor
	health     ports.HealthChecker
	close      func()
}

func openStorage(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*storage, error) {
	switch cfg.Driver {
	case "memory":
		store := memory.New()
		log.Warn().Msg("Using in-memory storage, data is lost on exit")
		return &storage{
			users:      store.Users(),
			wallets:    store.Wallets(),
			transfers:  store.Transfers(),
			audit:      store.Audit(),
			transactor: store,
			health:     store,
			close:      func() {},
		}, nil
	case "postgres":
		pool, err := pgStorage.NewPool(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		if err := pgStorage.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &storage{
			users:      pgStorage.NewUserRepo(pool),
			wallets:    pgStorage.NewWalletRepo(pool),
			transfers:  pgStorage.NewTransferRepo(pool),
			audit:      pgStorage.NewAuditRepo(pool),
			transactor: pgStorage.NewTransactor(pool),
			health:     pgStorage.NewHealthCheck(pool),
			close:      pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func main() {
	// Load configuration
	if err := config.LoadDotEnv(""); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("driver", cfg.Database.Driver).
		Msg("Starting coins wallet")

	ctx := context.Background()

	store, err := openStorage(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer store.close()

	healthCheckers := []ports.HealthChecker{store.health}

	// Redis is optional: without it the duplicate guard reads the ledger
	// only and rate limiting is off.
	var (
		similarCache   ports.SimilarTransferCache
		rateLimitStore *redisStorage.RateLimitStore
	)
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		similarCache = redisStorage.NewSimilarTransferCache(rdb)
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	}

	startingBalance, err := cfg.Wallet.StartingBalance()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid starting balance")
	}
	pager := pagination.New(cfg.Wallet.DefaultPageSize, cfg.Wallet.MaxPageSize)

	// Initialize services
	hashSvc := service.NewArgon2HashService(service.DefaultArgon2Params())
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	accountSvc := service.NewAccountService(
		store.wallets, store.transactor, pager, startingBalance, cfg.Wallet.Currency,
		logger.Component(log, "accounts"),
	)
	authSvc := service.NewAuthService(
		store.users, accountSvc, hashSvc, tokenSvc, store.transactor,
		logger.Component(log, "auth"),
	)
	transferSvc := service.NewTransferService(
		store.wallets, store.transfers, similarCache, store.transactor, pager,
		service.TransferConfig{SimilarWindow: cfg.MinSimilarWindow(), Currency: cfg.Wallet.Currency},
		logger.Component(log, "transfers"),
	)
	auditSvc := service.NewAuditService(store.audit, logger.Component(log, "audit"))

	deps := httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		AccountSvc:     accountSvc,
		TransferSvc:    transferSvc,
		TokenSvc:       tokenSvc,
		HealthCheckers: healthCheckers,
		AuditSvc:       auditSvc,
		Currency:       cfg.Wallet.Currency,
		PageLimits: httpHandler.PageLimits{
			Default: cfg.Wallet.DefaultPageSize,
			Max:     cfg.Wallet.MaxPageSize,
		},
		Logger: log,
	}
	if rateLimitStore != nil {
		deps.RateLimitStore = rateLimitStore
	}
	router := httpHandler.SetupRouter(deps)

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	auditSvc.Wait()

	log.Info().Msg("Server exited")
}
