package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/healthsphere/noshow/backend/internal/adapters/cache"
	"github.com/healthsphere/noshow/backend/internal/adapters/database"
	"github.com/healthsphere/noshow/backend/internal/adapters/events"
	"github.com/healthsphere/noshow/backend/internal/adapters/storage"
	"github.com/healthsphere/noshow/backend/internal/api/handlers"
	"github.com/healthsphere/noshow/backend/internal/api/routes"
	"github.com/healthsphere/noshow/backend/internal/application/services"
	"github.com/healthsphere/noshow/backend/internal/domain/entities"
	"github.com/healthsphere/noshow/backend/internal/domain/providers"
	"github.com/healthsphere/noshow/backend/internal/infrastructure/clients/postgres"
	redisclient "github.com/healthsphere/noshow/backend/internal/infrastructure/clients/redis"
	"github.com/healthsphere/noshow/backend/internal/infrastructure/observability"
	"github.com/healthsphere/noshow/backend/internal/ml"
	"github.com/healthsphere/noshow/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)
	logger := observability.GetLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// OpenTelemetry is optional; the engine runs fine without an endpoint.
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := shutdown(shutdownCtx); err != nil {
					logger.Warn().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	// Redis is optional: without it the engine loses the advisory score
	// cache and the model-event bus, nothing else.
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	redisCli, err := redisclient.NewClient(&cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, continuing without cache and event bus")
	} else {
		defer redisCli.Close()
		cacheProvider = cache.NewRedisAdapter(redisCli)
		eventBus = events.NewRedisEventBus(redisCli)
		defer eventBus.Close()
	}

	// Adapters
	patientAdapter := database.NewPatientAdapter(pgClient)
	visitAdapter := database.NewVisitAdapter(pgClient)

	modelStore, err := storage.NewFileModelStore(cfg.Model.ArtifactDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize model store")
	}

	// Prediction core
	registry := ml.NewRegistry(modelStore, *logger)
	cleaner := ml.NewCleaner()
	trainer := ml.NewTrainer(*logger)
	scheduler := ml.NewScheduler(
		ml.SchedulerConfig{
			Threshold:   int64(cfg.Model.RetrainEveryN),
			MinAccuracy: cfg.Model.MinAccuracy,
		},
		registry,
		visitAdapter,
		cleaner,
		trainer,
		eventBus,
		*logger,
	)

	// Bootstrap: load the persisted model or train one synchronously. A
	// failed bootstrap is not fatal to the process; predictions fail with
	// MODEL_UNAVAILABLE until a later training succeeds.
	if err := registry.Bootstrap(ctx, scheduler.BootstrapTrain); err != nil {
		logger.Error().Err(err).Msg("model bootstrap failed, serving without an active model")
	}

	scorer := services.NewAttendanceScoreCalculator(visitAdapter)
	imputer := services.NewRegistryAgeImputer(registry)
	builder := services.NewFeatureVectorBuilder(patientAdapter, scorer, imputer)

	adHocBuilder := builder
	if cacheProvider != nil {
		cachedScorer := services.NewSnapshotScoreCache(scorer, cacheProvider, cfg.Model.SnapshotTTLSeconds)
		adHocBuilder = services.NewFeatureVectorBuilder(patientAdapter, cachedScorer, imputer)
	}

	predictionService := services.NewPredictionService(registry, builder, adHocBuilder)
	adminService := services.NewModelAdminService(registry, scheduler, predictionService)

	if eventBus != nil {
		go consumeModelEvents(ctx, eventBus, metrics, logger)
	}

	// HTTP surface
	predictionHandler := handlers.NewPredictionHandler(predictionService, visitAdapter, scheduler, metrics)
	modelHandler := handlers.NewModelHandler(adminService)
	router := routes.NewRouter(predictionHandler, modelHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.RegisterRoutes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("server shutdown error")
	}

	// Let an in-flight training job finish so its artifact lands on disk.
	scheduler.Wait()
}

// consumeModelEvents mirrors training-lifecycle events into metrics so
// dashboards see job counts and accuracy without scraping the jobs endpoint.
func consumeModelEvents(ctx context.Context, bus providers.EventBus, metrics *observability.Metrics, logger *zerolog.Logger) {
	ch, err := bus.Subscribe(ctx, ml.ModelEventsChannel)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to subscribe to model events")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			switch event.Type {
			case entities.EventJobRunning:
				metrics.TrainingJobsStarted.Add(ctx, 1)
			case entities.EventJobFailed:
				metrics.TrainingJobsFailed.Add(ctx, 1)
			case entities.EventModelActivated:
				metrics.ModelAccuracy.Record(ctx, event.Accuracy)
			}
		}
	}
}
