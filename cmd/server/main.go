package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/SAP-F-2025/yds-assistant-service/internal/cache"
	"github.com/SAP-F-2025/yds-assistant-service/internal/challenge"
	"github.com/SAP-F-2025/yds-assistant-service/internal/config"
	"github.com/SAP-F-2025/yds-assistant-service/internal/events"
	"github.com/SAP-F-2025/yds-assistant-service/internal/handlers"
	"github.com/SAP-F-2025/yds-assistant-service/internal/imagesearch"
	"github.com/SAP-F-2025/yds-assistant-service/internal/llm"
	"github.com/SAP-F-2025/yds-assistant-service/internal/observability"
	"github.com/SAP-F-2025/yds-assistant-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/yds-assistant-service/internal/services"
	"github.com/SAP-F-2025/yds-assistant-service/internal/utils"
	"github.com/SAP-F-2025/yds-assistant-service/internal/validator"
	"github.com/SAP-F-2025/yds-assistant-service/pkg"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "yds-assistant",
		Short:         "YDS exam assistant API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update database tables and exit",
			RunE:  runMigrate,
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := utils.NewLogger(cfg.Environment)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if err := postgres.Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrated")
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := utils.NewLogger(cfg.Environment)
	slogger := utils.ToSlogLogger(logger)
	loc := cfg.Location()

	shutdownTracing := observability.InitOTel(ctx, slogger, observability.OtelConfig{
		Enabled:     cfg.Tracing.Enabled,
		Environment: cfg.Environment,
		Version:     version,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	// Storage
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if err := postgres.Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	repo := postgres.NewRepository(db)

	var store cache.CacheService = cache.NoopCache{}
	redisClient, err := pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("Redis unavailable, dictionary cache disabled", "error", err)
	} else if redisClient != nil {
		defer redisClient.Close()
		store = cache.NewRedisCache(redisClient, "yds", slogger)
	}

	// Upstreams
	generator := llm.NewProvider(llm.Config{
		BaseURL:    cfg.LLMBaseURL,
		APIKey:     cfg.LLMAPIKey,
		Model:      cfg.LLMModel,
		MaxRetries: cfg.LLMMaxRetries,
		Timeout:    cfg.LLMTimeout,
	}, slogger)
	images := imagesearch.NewPexelsClient("", cfg.PexelsAPIKey, 10*time.Second, slogger)

	// Daily challenges
	catalog := challenge.DefaultCatalog()
	if cfg.ChallengeCatalogFile != "" {
		if catalog, err = challenge.LoadCatalog(cfg.ChallengeCatalogFile); err != nil {
			return fmt.Errorf("failed to load challenge catalog: %w", err)
		}
	}
	engine, err := challenge.NewEngine(catalog, nil, loc)
	if err != nil {
		return fmt.Errorf("invalid challenge catalog: %w", err)
	}

	examSessions := services.DefaultExamSessions
	if cfg.ExamCalendarFile != "" {
		if examSessions, err = services.LoadExamSessions(cfg.ExamCalendarFile); err != nil {
			return fmt.Errorf("failed to load exam calendar: %w", err)
		}
	}

	// Events
	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Warn("Event publisher unavailable, falling back to mock", "error", err)
		publisher = events.NewMockEventPublisher(slogger)
	}
	defer publisher.Close()
	if bus, ok := publisher.(*events.WatermillEventPublisher); ok && bus.Subscriber() != nil {
		go func() {
			if err := events.Consume(ctx, bus.Subscriber(), bus.Topic(), events.LogActivity(slogger), slogger); err != nil {
				logger.Warn("Activity consumer stopped", "error", err)
			}
		}()
	}

	serviceManager := services.NewServiceManager(services.Dependencies{
		Repository:         repo,
		Generator:          generator,
		Images:             images,
		Cache:              store,
		Publisher:          publisher,
		Engine:             engine,
		Validator:          validator.New(),
		Logger:             slogger,
		ExamSessions:       examSessions,
		Location:           loc,
		JWTSecret:          cfg.JWTSecret,
		JWTTTL:             cfg.JWTTTL,
		DictionaryCacheTTL: cfg.DictionaryCacheTTL,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(observability.ServiceName))
	router.Use(utils.RequestID())
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(handlers.CORS(cfg.CORSOrigins))

	handlers.NewHandlerManager(serviceManager, logger, handlers.RouterConfig{
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}).SetupRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "port", cfg.Port, "environment", cfg.Environment, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
		return err
	}
	return nil
}
