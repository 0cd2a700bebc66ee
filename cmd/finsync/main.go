package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"finsync/internal/api"
	"finsync/internal/api/handlers"
	"finsync/internal/clients/cnb"
	"finsync/internal/clients/gocardless"
	"finsync/internal/clients/trading212"
	"finsync/internal/repository"
	"finsync/internal/service"
	"finsync/pkg/config"
	"finsync/pkg/logger"
	"finsync/pkg/postgres"

	"go.uber.org/zap"
)

// @title finsync API
// @version 1.0
// @description Bank account synchronization, internal transfer detection, CNB exchange rates and Trading 212 portfolio sync
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey CronSecret
// @in header
// @name x-cron-secret

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting finsync service")

	// Initialize database
	if err := postgres.Migrate(&cfg.Database, appLogger); err != nil {
		appLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	institutionRepo := repository.NewInstitutionRepository(db, appLogger)
	connectionRepo := repository.NewConnectionRepository(db, appLogger)
	accountRepo := repository.NewAccountRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)
	categoryRepo := repository.NewCategoryRepository(db, appLogger)
	fxRepo := repository.NewFxRateRepository(db, appLogger)
	t212Repo := repository.NewTrading212Repository(db, appLogger)

	// External clients. The aggregator client is built per sync run so each run owns its token.
	loc := cfg.Sync.Location()
	gcLogger := logger.Component("gocardless")
	newAggregator := func(ctx context.Context) (service.Aggregator, error) {
		client, err := gocardless.NewClient(ctx, &cfg.GoCardless, gcLogger,
			gocardless.WithLocation(loc),
			gocardless.WithHomeCurrency(cfg.Sync.HomeCurrency),
		)
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	var t212Source service.T212Source
	if cfg.Trading212.APIKey != "" {
		client, err := trading212.NewClient(&cfg.Trading212, logger.Component("t212"))
		if err != nil {
			appLogger.Fatal("Failed to initialize Trading 212 client", zap.Error(err))
		}
		t212Source = client
	} else {
		appLogger.Info("T212_API_KEY not set, Trading 212 integration disabled")
	}

	merchants, closeMerchants := newMerchantNormalizer(cfg, appLogger)
	defer closeMerchants()

	// Initialize services
	fxService := service.NewFXService(fxRepo, cnb.NewClient(&cfg.CNB, logger.Component("cnb")), cfg.Sync.HomeCurrency, logger.Component("fx"))
	t212Service := service.NewT212Service(t212Source, t212Repo, cfg.Trading212.CacheTTL, logger.Component("t212"))
	detector := service.NewTransferDetector(txRepo, categoryRepo, cfg.Sync, logger.Component("transfers"))

	var converter service.HomeConverter
	if cfg.Sync.ConvertFX {
		converter = fxService
	}
	syncService := service.NewSyncService(
		newAggregator,
		institutionRepo,
		connectionRepo,
		accountRepo,
		txRepo,
		detector,
		merchants,
		converter,
		cfg.Sync,
		logger.Component("sync"),
	)
	nightlyService := service.NewNightlyService(fxService, t212Service, syncService, logger.Component("nightly"))

	// Initialize handlers
	h := api.Handlers{
		Sync:    handlers.NewSyncHandler(syncService, detector, appLogger),
		Connect: handlers.NewConnectHandler(syncService, appLogger),
		FX:      handlers.NewFXHandler(fxService, appLogger),
		T212:    handlers.NewT212Handler(t212Service, appLogger),
		Cron:    handlers.NewCronHandler(nightlyService, appLogger),
	}

	// Setup router
	app := api.SetupRouter(h, cfg.Server, cfg.Cron.Secret, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}

// newMerchantNormalizer picks the configured normaliser. GigaChat falls back to the rules
// when it cannot be initialised.
func newMerchantNormalizer(cfg *config.Config, appLogger *zap.Logger) (service.MerchantNormalizer, func()) {
	if cfg.Sync.MerchantNormalizer != "gigachat" {
		return service.NewRuleNormalizer(), func() {}
	}

	normalizer, err := service.NewGigaChatNormalizer(&cfg.GigaChat, logger.Component("gigachat"))
	if err != nil {
		appLogger.Warn("Failed to initialize GigaChat normalizer, using rules", zap.Error(err))
		return service.NewRuleNormalizer(), func() {}
	}
	return normalizer, normalizer.Close
}
