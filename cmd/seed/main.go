package main

import (
	"context"
	"log"

	"finsync/internal/models"
	"finsync/internal/repository"
	"finsync/pkg/config"
	"finsync/pkg/logger"
	"finsync/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	if err := postgres.Migrate(&cfg.Database, appLogger); err != nil {
		appLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	categoryRepo := repository.NewCategoryRepository(db, appLogger)

	appLogger.Info("Starting database seeding...")

	if err := seedCategories(ctx, categoryRepo, cfg.Sync, appLogger); err != nil {
		appLogger.Fatal("Failed to seed categories", zap.Error(err))
	}

	appLogger.Info("Database seeding completed successfully!")
}

// seedCategories ensures the base categories and the reserved transfer category exist.
// Running it again is a no-op: categories are matched by name.
func seedCategories(ctx context.Context, repo *repository.CategoryRepository, syncCfg config.SyncConfig, logger *zap.Logger) error {
	for _, name := range models.BaseCategories {
		cat, err := repo.EnsureByName(ctx, models.CategoryID(name), name)
		if err != nil {
			return err
		}
		logger.Debug("Category ensured", zap.String("id", cat.ID), zap.String("name", cat.Name))
	}

	transfer, err := repo.EnsureByName(ctx, syncCfg.TransferCategoryID, syncCfg.TransferCategoryName)
	if err != nil {
		return err
	}
	logger.Info("Categories seeded",
		zap.Int("base", len(models.BaseCategories)),
		zap.String("transfer_id", transfer.ID),
	)
	return nil
}
