// Package main is the entry point for the tradedesk background worker. It
// runs the data-integrity scan and the cleanup jobs on cron schedules.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tradedesk/internal/config"
	"tradedesk/internal/domain/auth"
	"tradedesk/internal/domain/documents/purchase_order"
	"tradedesk/internal/domain/stock"
	"tradedesk/internal/infrastructure/numerator"
	"tradedesk/internal/infrastructure/storage/postgres"
	"tradedesk/internal/infrastructure/storage/postgres/auth_repo"
	"tradedesk/internal/infrastructure/storage/postgres/document_repo"
	"tradedesk/internal/infrastructure/storage/postgres/stock_repo"
	"tradedesk/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	log = log.WithComponent("worker")

	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))
	defer cancel()

	log.Info("starting tradedesk worker")

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = 4
	poolCfg.ApplicationName = "tradedesk-worker"
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool).WithStatementTimeout(cfg.TxTimeout)
	num := numerator.NewWithResolver(func(ctx context.Context) numerator.Querier {
		return txm.GetQuerier(ctx)
	})
	auditStore, err := postgres.NewAuditStore(txm)
	if err != nil {
		log.Fatalw("failed to initialize audit store", "error", err)
	}

	authService := auth.NewService(auth_repo.NewUserRepo(txm), auth_repo.NewTokenRepo(txm), txm,
		auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret)), auth.DefaultServiceConfig())

	jobs := &Jobs{
		Stock:       stock.NewService(stock_repo.New(txm)),
		Orders:      purchase_order.NewService(document_repo.NewPurchaseOrderRepo(txm), num, txm, auditStore),
		Idempotency: postgres.NewIdempotencyStore(txm, cfg.IdempotencyTTL),
		Tokens:      authService,
	}

	scheduler, err := NewScheduler(ctx, log, jobs, Schedules{
		Integrity:          cfg.IntegrityCron,
		IdempotencyCleanup: cfg.IdempotencyCleanupCron,
		TokenCleanup:       cfg.TokenCleanupCron,
	})
	if err != nil {
		log.Fatalw("failed to schedule jobs", "error", err)
	}
	scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()
	<-scheduler.Stop().Done()
	log.Info("worker stopped")
}
