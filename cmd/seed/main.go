package main

import (
	"context"
	"flag"
	"os"
	"time"

	"marketplace_auth/internal/config"
	"marketplace_auth/internal/logger"
	"marketplace_auth/internal/repository"
	"marketplace_auth/internal/service"
)

func main() {
	cfg := config.Load()
	appLog := logger.New(cfg)

	creds := service.DefaultAdmin
	phone := flag.String("phone", envOr("SEED_ADMIN_PHONE", creds.PhoneNumber), "admin phone number")
	password := flag.String("password", envOr("SEED_ADMIN_PASSWORD", creds.Password), "admin password")
	name := flag.String("name", envOr("SEED_ADMIN_NAME", creds.Name), "admin display name")
	flag.Parse()

	if *password == service.DefaultAdmin.Password {
		appLog.Warn("seeding admin with the default password; change it outside local development")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		appLog.Error("failed to load DB config", "error", err)
		os.Exit(1)
	}
	pool, err := config.ConnectDB(ctx, dbCfg, appLog)
	if err != nil {
		appLog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := config.AutoMigrate(pool, appLog); err != nil {
		appLog.Error("failed to migrate database", "error", err)
		pool.Close()
		os.Exit(1)
	}

	seeder := service.NewAdminSeeder(repository.NewUserRepository(pool), service.AdminCredentials{
		PhoneNumber: *phone,
		Password:    *password,
		Name:        *name,
	}, appLog)

	result, err := seeder.Seed(ctx)
	if err != nil {
		appLog.Error("seeding failed", "error", err)
		pool.Close()
		os.Exit(1)
	}
	appLog.Info("seeding finished", "result", result.String(), "phone", *phone)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
