package main

import (
	"context"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/lifecert/lifecert-backend/api/routes"
	"github.com/lifecert/lifecert-backend/internal/certificates"
	"github.com/lifecert/lifecert-backend/internal/courses"
	"github.com/lifecert/lifecert-backend/internal/ledger"
	"github.com/lifecert/lifecert-backend/internal/platform"
	"github.com/lifecert/lifecert-backend/internal/replay"
	"github.com/lifecert/lifecert-backend/internal/settlement"
	"github.com/lifecert/lifecert-backend/pkg/config"
	"github.com/lifecert/lifecert-backend/pkg/db"
	"github.com/lifecert/lifecert-backend/pkg/logger"
	"github.com/lifecert/lifecert-backend/pkg/metrics"
	"github.com/lifecert/lifecert-backend/pkg/migrate"
	"github.com/lifecert/lifecert-backend/pkg/outbox"
	"github.com/lifecert/lifecert-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ledgerMetrics := metrics.NewLedgerMetrics(registry)

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	platformService, err := platform.NewService(platform.NewRepository(dbClient.DB()), dbClient, outboxService, cfg.Ledger, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create platform service", err)
		os.Exit(1)
	}

	if err := seedPlatformSettings(context.Background(), cfg, platformService, logg); err != nil {
		logg.Error(context.Background(), "failed to seed platform settings", err)
		os.Exit(1)
	}

	courseService, err := courses.NewService(courses.NewRepository(dbClient.DB()), dbClient, outboxService, cfg.Ledger)
	if err != nil {
		logg.Error(context.Background(), "failed to create course service", err)
		os.Exit(1)
	}

	certificateRepo := certificates.NewRepository(dbClient.DB())
	certificateService, err := certificates.NewService(certificateRepo, dbClient, outboxService, platformService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create certificate service", err)
		os.Exit(1)
	}

	replayGuard, err := replay.NewService(
		replay.NewRepository(dbClient.DB()),
		redisClient,
		logg,
		cfg.Ledger.ReplayPrecheckTTL,
		cfg.Ledger.ReplayPrecheckEnable,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create replay guard", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ledger.Deps{
		Tx:       dbClient,
		Certs:    certificateRepo,
		Courses:  courseService,
		Settings: platformService,
		Guard:    replayGuard,
		Engine:   settlement.NewEngine(),
		Events:   outboxService,
		Metrics:  ledgerMetrics,
		Logger:   logg,
		Config:   cfg.Ledger,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			ledgerService,
			certificateService,
			courseService,
			platformService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// seedPlatformSettings inserts the singleton settings row on first boot when a
// treasury account is configured. Without a row, every paid mutation fails
// with a not-found error.
func seedPlatformSettings(ctx context.Context, cfg *config.Config, svc platform.Service, logg *logger.Logger) error {
	if cfg.Platform.SeedTreasuryUserID == "" {
		logg.Warn(ctx, "platform treasury not configured, skipping settings seed")
		return nil
	}
	treasuryID, err := uuid.Parse(cfg.Platform.SeedTreasuryUserID)
	if err != nil {
		return err
	}
	return svc.EnsureDefaults(ctx, platform.SeedInput{
		MintPriceCents:   cfg.Platform.SeedMintPriceCents,
		AppendPriceCents: cfg.Platform.SeedAppendCents,
		TreasuryUserID:   treasuryID,
		PlatformName:     cfg.Platform.Name,
	})
}
