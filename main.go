package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/kiosco-inc/kiosco-engine/pkg/config"
	"github.com/kiosco-inc/kiosco-engine/pkg/database"
	"github.com/kiosco-inc/kiosco-engine/pkg/handlers"
	"github.com/kiosco-inc/kiosco-engine/pkg/logging"
	"github.com/kiosco-inc/kiosco-engine/pkg/middleware"
	"github.com/kiosco-inc/kiosco-engine/pkg/repositories"
	"github.com/kiosco-inc/kiosco-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.Bool("catalog_cache", cfg.Redis.Host != ""))

	ctx := context.Background()

	// Migrations run over database/sql; the service itself uses pgxpool.
	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open database for migrations", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = migrationDB.Close()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := database.NewRedisClient(&database.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	// Repositories
	allergenRepo := repositories.NewCachedAllergenRepository(
		repositories.NewAllergenRepository(db),
		redisClient,
		time.Duration(cfg.Redis.CatalogTTLSeconds)*time.Second,
		logger,
	)
	associationRepo := repositories.NewAssociationRepository(db)
	productRepo := repositories.NewProductRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	// Services
	auditService := services.NewAuditService(auditRepo, logger)
	conflictService := services.NewConflictService(
		allergenRepo, associationRepo, productRepo,
		cfg.Gate.MaxConcurrentLookups, logger)
	gateService := services.NewSaleGateService(auditService, logger)

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewSaleHandler(conflictService, gateService, auditService, logger).RegisterRoutes(mux)
	handlers.NewCatalogHandler(allergenRepo, associationRepo, logger).RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting kiosco-engine", zap.String("addr", addr), zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
