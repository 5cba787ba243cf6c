package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kevin07696/payout-validation/internal/adapters/postgres"
	"github.com/kevin07696/payout-validation/internal/adapters/secrets"
	"github.com/kevin07696/payout-validation/internal/config"
	"github.com/kevin07696/payout-validation/internal/domain/ports"
	"github.com/kevin07696/payout-validation/pkg/logging"
)

var (
	flags   = flag.NewFlagSet("migrate", flag.ExitOnError)
	timeout = flags.Duration("timeout", time.Minute, "overall deadline for connecting and applying migrations")
)

func main() {
	flags.Usage = usage
	_ = flags.Parse(os.Args[1:])

	args := flags.Args()
	if len(args) != 1 || args[0] != "up" {
		flags.Usage()
		os.Exit(2)
	}

	if err := up(); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func up() error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	if !cfg.Database.Enabled() {
		return fmt.Errorf("DB_HOST is required")
	}

	logger, err := logging.New(cfg.Logger.Level, true)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, err := secrets.Open(ctx, cfg.Secrets, logger)
	if err != nil {
		return err
	}
	if err := cfg.Database.ResolvePassword(ctx, store); err != nil {
		return err
	}

	poolCfg := postgres.DefaultPoolConfig(cfg.Database.ConnectionString())
	poolCfg.MaxConns = 1
	poolCfg.MinConns = 0
	pool, err := postgres.NewPool(ctx, poolCfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, logger); err != nil {
		return err
	}
	logger.Info("schema is up to date", ports.String("database", cfg.Database.Database))
	return nil
}

func usage() {
	fmt.Print(`Usage: migrate [-timeout 1m] up

Applies the embedded schema to the database named by DB_HOST, DB_PORT,
DB_USER, DB_PASSWORD (or DB_PASSWORD_SECRET), DB_NAME and DB_SSL_MODE.
Every migration is idempotent, so running up twice is safe.
`)
}
