// Command migrate applies the shop registry schema to DATABASE_URL and
// optionally loads the demo seed into an empty registry.
//
//	go run ./cmd/migrate [-seed] [-seed-file path]
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tirescan-backend/internal/bootstrap"
	"tirescan-backend/internal/shared/config"
	"tirescan-backend/internal/shared/storage/db"
	"tirescan-backend/internal/shared/telemetry"
	"tirescan-backend/internal/shops"
)

func main() {
	seed := flag.Bool("seed", false, "load seed shops when the registry is empty")
	seedFile := flag.String("seed-file", "", "YAML seed file (defaults to SEED_FILE or the embedded demo data)")
	flag.Parse()

	cfg := config.Load()
	telemetry.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *seed, *seedFile); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, seed bool, seedFile string) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	sqlDB, err := db.Open(ctx, cfg.DatabaseURL, bootstrap.DBPool(db.MigratePool(), cfg))
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	started := time.Now()
	if err := db.Migrate(ctx, sqlDB); err != nil {
		return err
	}
	version, err := db.SchemaVersion(ctx, sqlDB)
	if err != nil {
		return err
	}
	telemetry.Info("migrate.applied", map[string]any{
		"version":     version,
		"duration_ms": time.Since(started).Milliseconds(),
	})

	if !seed {
		return nil
	}
	if seedFile == "" {
		seedFile = cfg.SeedFile
	}
	data, err := shops.LoadSeed(seedFile)
	if err != nil {
		return err
	}
	svc := shops.NewService(&shops.PGRepo{DB: sqlDB})
	added, err := svc.SeedIfEmpty(ctx, data)
	if err != nil {
		return err
	}
	telemetry.Info("migrate.seeded", map[string]any{"shops": added})
	return nil
}
