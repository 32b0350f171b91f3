// Package main seeds the database with the admin account and, when
// SEED_DEMO_DATA=true, a small set of demo master data.
package main

import (
	"context"
	"fmt"
	"os"

	"tradedesk/internal/config"
	"tradedesk/internal/domain/auth"
	"tradedesk/internal/infrastructure/storage/postgres"
	"tradedesk/internal/infrastructure/storage/postgres/auth_repo"
	"tradedesk/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	ctx := logger.WithLogger(context.Background(), log)

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("connected to database")

	txm := postgres.NewTxManager(pool)
	authService := auth.NewService(auth_repo.NewUserRepo(txm), auth_repo.NewTokenRepo(txm), txm,
		auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret)), auth.DefaultServiceConfig())

	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}
	created, err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}
	if created {
		log.Infow("admin user created", "email", cfg.AdminEmail)
	} else {
		log.Infow("admin user already exists", "email", cfg.AdminEmail)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, txm); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}
