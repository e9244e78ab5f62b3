package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/kodawari/backend/config"
	"github.com/pageza/kodawari/backend/internal/api"
	"github.com/pageza/kodawari/backend/internal/database"
	"github.com/pageza/kodawari/backend/internal/logger"
	"github.com/pageza/kodawari/backend/internal/middleware"
	"github.com/pageza/kodawari/backend/internal/router"
	"github.com/pageza/kodawari/backend/internal/server"
	"github.com/pageza/kodawari/backend/internal/service"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.Environment == config.Development,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zlog); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
	zlog.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	if err := database.RunMigrations(db); err != nil {
		return err
	}

	redisClient, err := database.NewRedisClient(cfg, log)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	s3Config, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return err
	}

	// A nil interface disables signed notifications.
	var notifications service.SignedPayloadVerifier
	if cfg.AppleRootCAPath != "" {
		verifier, err := service.LoadNotificationVerifier(cfg.AppleRootCAPath)
		if err != nil {
			return err
		}
		notifications = verifier
	} else {
		log.Warn("APPLE_ROOT_CA_PATH not set, signed purchase notifications are disabled")
	}

	recipes := service.NewRecipeService(db)
	labels := service.NewLabelService(db, cfg.LabelUniqueNames)
	library := service.NewLibraryService(recipes, labels)
	purchases := service.NewPurchaseService(db,
		service.NewAppleReceiptClient(cfg, log),
		notifications,
		service.NewS3PayloadArchive(s3Config),
		log)
	profiles := service.NewProfileService(db, service.NewIdentityAdminClient(cfg, log), recipes, log)
	mailer := service.NewContactMailer(cfg, log)

	production := cfg.Environment == config.Production
	handlers := router.Handlers{
		Generate:  api.NewGenerateHandler(service.NewOpenAIClient(cfg, log), log, production),
		Recipes:   api.NewRecipeHandler(recipes, library, log, production),
		Labels:    api.NewLabelHandler(labels, log, production),
		Purchases: api.NewPurchaseHandler(purchases, log, production),
		Accounts:  api.NewAccountHandler(profiles, mailer, log, production),
		Health: api.NewHealthHandler(func(ctx context.Context) error {
			return database.HealthCheck(ctx, db)
		}, log),
	}

	var limiter *middleware.RateLimiter
	if redisClient != nil {
		limiter = middleware.NewGenerationRateLimiter(redisClient, cfg.RateLimitPerHour, log)
	}

	srv := server.New(cfg, router.SetupRouter(cfg, handlers, limiter, log), log)
	err = srv.Run(ctx)
	closeDB(db, log)
	return err
}

func closeDB(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
