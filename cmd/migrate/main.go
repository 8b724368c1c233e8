package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"marketplace_auth/internal/config"
	"marketplace_auth/internal/logger"

	"github.com/golang-migrate/migrate/v4"
)

func main() {
	op := flag.String("op", "", "operation: up, down, version, force")
	steps := flag.Int("steps", 0, "number of steps for up/down (0 = all), or the version for force")
	flag.Parse()

	if *op == "" {
		fmt.Println("Usage: migrate -op=[up|down|version|force] -steps=[n]")
		os.Exit(1)
	}

	cfg := config.Load()
	appLog := logger.New(cfg)

	if err := run(*op, *steps, appLog); err != nil {
		appLog.Error("migration failed", "op", *op, "error", err)
		os.Exit(1)
	}
}

func run(op string, steps int, appLog *slog.Logger) error {
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		return err
	}
	pool, err := config.ConnectDB(context.Background(), dbCfg, appLog)
	if err != nil {
		return err
	}
	defer pool.Close()

	m, closeFn, err := config.NewMigrator(pool)
	if err != nil {
		return err
	}
	defer closeFn()

	switch op {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	case "version":
		v, dirty, verr := m.Version()
		if verr != nil {
			return verr
		}
		appLog.Info("schema version", "version", v, "dirty", dirty)
		return nil
	case "force":
		if steps == 0 {
			return errors.New("please specify the version to force with -steps")
		}
		err = m.Force(steps)
	default:
		return fmt.Errorf("unknown operation %q", op)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		appLog.Info("no changes detected")
		return nil
	}
	if err != nil {
		return err
	}
	appLog.Info("migration success", "op", op)
	return nil
}
