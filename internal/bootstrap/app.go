package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"tirescan-backend/internal/analysis"
	"tirescan-backend/internal/services/health"
	"tirescan-backend/internal/shared/cache"
	"tirescan-backend/internal/shared/config"
	"tirescan-backend/internal/shared/server"
	"tirescan-backend/internal/shared/storage/db"
	"tirescan-backend/internal/shared/storage/object"
	localstore "tirescan-backend/internal/shared/storage/object/local"
	s3store "tirescan-backend/internal/shared/storage/object/s3"
	"tirescan-backend/internal/shared/telemetry"
	"tirescan-backend/internal/shops"
	"tirescan-backend/internal/vision"
	"tirescan-backend/internal/vision/openai"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Cache           *cache.RedisCache
	Store           object.Archive
	Vision          vision.Client
	ShopsRepo       shops.Repo
	ShopsService    *shops.Service
	AnalysisService *analysis.Service
	ShopsHandler    *shops.Handler
	AnalysisHandler *analysis.Handler
}

// Build prepares dependencies, seeds the registry and wires routes.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
	}

	if app.Store, err = buildStore(ctx, cfg); err != nil {
		return nil, err
	}
	app.Cache = buildCache(ctx, cfg)
	if app.Vision, err = buildVision(cfg); err != nil {
		return nil, err
	}

	if err := buildServices(ctx, app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		AnalysisHandler: app.AnalysisHandler,
		ShopsHandler:    app.ShopsHandler,
		Health:          health.NewService(app.healthChecks()),
	})
	return app, nil
}

// Close releases connections held by the app.
func (a *App) Close() {
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		telemetry.Info("bootstrap.db", map[string]any{"mode": "memory", "reason": "DATABASE_URL empty"})
		return nil, nil
	}

	sqlDB, err := db.Open(ctx, cfg.DatabaseURL, DBPool(db.ServerPool(), cfg))
	if err == nil {
		err = db.Migrate(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db", map[string]any{"mode": "memory", "error": err.Error()})
			return nil, nil
		}
		return nil, fmt.Errorf("database: %w", err)
	}
	return sqlDB, nil
}

// DBPool applies the DB_* settings from cfg on top of base.
func DBPool(base db.Pool, cfg config.Config) db.Pool {
	return base.Override(db.Pool{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		PingTimeout:     cfg.DBPingTimeout,
	})
}

func buildStore(ctx context.Context, cfg config.Config) (object.Archive, error) {
	if !cfg.ArchiveImages {
		return nil, nil
	}
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, s3store.Options{
			Region:   cfg.AWSRegion,
			Bucket:   cfg.S3Bucket,
			Prefix:   cfg.S3Prefix,
			KMSKeyID: cfg.SSEKMSKeyID,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildCache returns nil when no cache is configured or reachable; the
// pipeline runs uncached in that case.
func buildCache(ctx context.Context, cfg config.Config) *cache.RedisCache {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil
	}
	c, err := cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		telemetry.Warn("bootstrap.cache", map[string]any{"error": err.Error()})
		return nil
	}
	if err := c.Ping(ctx); err != nil {
		telemetry.Warn("bootstrap.cache", map[string]any{"error": err.Error()})
		_ = c.Close()
		return nil
	}
	return c
}

func buildVision(cfg config.Config) (vision.Client, error) {
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		telemetry.Warn("bootstrap.vision", map[string]any{"reason": "OPENAI_API_KEY empty; analyze requests will fail with configuration_error"})
		return vision.UnconfiguredClient{}, nil
	}
	if _, err := vision.SystemPrompt(cfg.VisionPromptVersion); err != nil {
		return nil, err
	}
	return openai.NewClient(openai.Options{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.VisionModel,
		BaseURL:     cfg.OpenAIBaseURL,
		Timeout:     cfg.VisionTimeout,
		ImageDetail: cfg.VisionImageDetail,
		MaxTokens:   cfg.VisionMaxTokens,
	})
}

func buildServices(ctx context.Context, app *App) error {
	if app.DB != nil {
		app.ShopsRepo = &shops.PGRepo{DB: app.DB}
	} else {
		app.ShopsRepo = shops.NewMemoryRepo()
	}
	app.ShopsService = shops.NewService(app.ShopsRepo)

	seed, err := shops.LoadSeed(app.Config.SeedFile)
	if err != nil {
		return err
	}
	if _, err := app.ShopsService.SeedIfEmpty(ctx, seed); err != nil {
		return fmt.Errorf("seed shops: %w", err)
	}

	svc := &analysis.Service{
		Vision:        app.Vision,
		Inventory:     app.ShopsService,
		CacheTTL:      app.Config.CacheTTL,
		Store:         app.Store,
		ArchiveImages: app.Config.ArchiveImages,
		Model:         app.Config.VisionModel,
		PromptVersion: app.Config.VisionPromptVersion,
		Timeout:       app.Config.VisionTimeout,
		MaxAttempts:   app.Config.VisionMaxAttempts,
	}
	// Assigning a nil *RedisCache would make the interface non-nil.
	if app.Cache != nil {
		svc.Cache = app.Cache
	}
	app.AnalysisService = svc
	app.ShopsHandler = shops.NewHandler(app.ShopsService)
	app.AnalysisHandler = analysis.NewHandler(svc)
	return nil
}

func (a *App) healthChecks() map[string]health.Check {
	checks := map[string]health.Check{}
	if a.DB != nil {
		checks["db"] = a.DB.PingContext
	}
	if a.Cache != nil {
		checks["cache"] = a.Cache.Ping
	}
	return checks
}
