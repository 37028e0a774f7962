package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/makkenzo/niches-hunter-api/internal/ai"
	"github.com/makkenzo/niches-hunter-api/internal/config"
	"github.com/makkenzo/niches-hunter-api/internal/email"
	"github.com/makkenzo/niches-hunter-api/internal/handler"
	"github.com/makkenzo/niches-hunter-api/internal/payments"
	"github.com/makkenzo/niches-hunter-api/internal/pricing"
	"github.com/makkenzo/niches-hunter-api/internal/ratelimit"
	"github.com/makkenzo/niches-hunter-api/internal/service"
	"github.com/makkenzo/niches-hunter-api/internal/storage/postgres"
	"github.com/makkenzo/niches-hunter-api/internal/storage/redis"
	"github.com/makkenzo/niches-hunter-api/internal/tasks"
	"github.com/makkenzo/niches-hunter-api/internal/worker"
	"github.com/makkenzo/niches-hunter-api/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	rateLimitBackendRedis = "redis"
	rateLimitScope        = "api_v1"
)

func main() {
	configPath := flag.String("config", "./configs/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.NewZapLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	sugarLogger := appLogger.Sugar()

	sugarLogger.Info("Starting application...")
	sugarLogger.Infof("Log level set to: %s", cfg.Log.Level)
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	appCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(appCtx, cfg.Database.URL, "up", appLogger); err != nil {
			sugarLogger.Fatalf("Failed to run migrations: %v", err)
		}
	}

	dbPool, err := postgres.NewPgxPool(appCtx, &cfg.Database, appLogger)
	if err != nil {
		sugarLogger.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbPool.Close()

	redisClient, err := redis.NewRedisClient(appCtx, &cfg.Redis, appLogger)
	if err != nil {
		sugarLogger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	redisStore := redis.NewStore(redisClient)

	accountRepo := postgres.NewAccountRepository(dbPool, appLogger)
	apiKeyRepo := postgres.NewAPIKeyRepository(dbPool, appLogger)
	walletRepo := postgres.NewWalletRepository(dbPool, appLogger)
	nicheRepo := postgres.NewNicheRepository(dbPool, appLogger)
	blogRepo := postgres.NewBlogRepository(dbPool, appLogger)
	workspaceRepo := postgres.NewWorkspaceRepository(dbPool, appLogger)
	validationRepo := postgres.NewValidationRepository(dbPool, appLogger)
	subscriberRepo := postgres.NewSubscriberRepository(dbPool, appLogger)

	policy := ratelimit.Policy{Window: cfg.APIAccess.RateLimitWindow, Max: cfg.APIAccess.RateLimitMax}
	var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter(policy)
	if cfg.APIAccess.RateLimitBackend == rateLimitBackendRedis {
		limiter = ratelimit.NewRedisLimiter(policy, redisStore, rateLimitScope)
	}
	sugarLogger.Infof("Rate limiter backend: %s", cfg.APIAccess.RateLimitBackend)

	asynqClient := asynq.NewClient(worker.RedisConnOpt(&cfg.Redis))
	defer asynqClient.Close()
	mailer := tasks.NewAsynqEnqueuer(asynqClient, appLogger)

	gateway := payments.NewClient(cfg.Stripe, appLogger)

	var generator ai.Generator
	gemini, err := ai.NewGeminiClient(appCtx, cfg.AI, appLogger)
	switch {
	case err == nil:
		defer gemini.Close()
		generator = gemini
	case errors.Is(err, ai.ErrNotConfigured):
		sugarLogger.Warn("AI provider not configured, idea validation will fail")
	default:
		sugarLogger.Fatalf("Failed to initialize AI provider: %v", err)
	}

	accountService := service.NewAccountService(accountRepo, mailer, cfg.Auth, cfg.App.BaseURL, cfg.Email.AdminAddress, appLogger)
	walletService := service.NewWalletService(walletRepo, accountRepo, apiKeyRepo, cfg.APIAccess, appLogger)
	apiKeyService := service.NewAPIKeyService(apiKeyRepo, walletService, cfg.APIAccess.MaxActiveKeys, appLogger)
	meteringService := service.NewMeteringService(apiKeyRepo, walletRepo, limiter, pricing.NewDefaultTable(), cfg.APIAccess.TopUpURL, appLogger)
	billingService := service.NewBillingService(gateway, accountRepo, walletService, cfg.Stripe, appLogger)
	webhookService := service.NewWebhookService(gateway, accountRepo, walletService, redisStore, appLogger)
	contentService := service.NewContentService(nicheRepo, blogRepo, accountService, appLogger)
	subscriberService := service.NewSubscriberService(subscriberRepo, mailer, cfg.App.BaseURL, appLogger)
	workspaceService := service.NewWorkspaceService(workspaceRepo, appLogger)
	validationService := service.NewValidationService(validationRepo, generator, accountService, appLogger)

	handlers := handler.Handlers{
		Health: handler.NewHealthHandler(dbPool, handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}), appLogger),
		Auth:        handler.NewAuthHandler(accountService, cfg.Auth, appLogger),
		APIKeys:     handler.NewAPIKeyHandler(apiKeyService, appLogger),
		Dashboard:   handler.NewDashboardHandler(walletService, billingService, appLogger),
		Billing:     handler.NewBillingHandler(billingService, webhookService, appLogger),
		Content:     handler.NewContentHandler(contentService, subscriberService, appLogger),
		Metered:     handler.NewMeteredHandler(contentService, appLogger),
		Workspace:   handler.NewWorkspaceHandler(workspaceService, appLogger),
		Validations: handler.NewValidationHandler(validationService, appLogger),
	}

	router := handler.NewRouter(handlers, accountService, meteringService, handler.RouterConfig{
		CORSOrigins: cfg.Server.CORSOrigins,
		CookieName:  cfg.Auth.CookieName,
		AccessLog:   true,
	}, appLogger)

	g, groupCtx := errgroup.WithContext(appCtx)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g.Go(func() error {
		sugarLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugarLogger.Errorf("HTTP server ListenAndServe error: %v", err)
			return fmt.Errorf("http server failed: %w", err)
		}
		sugarLogger.Info("HTTP server stopped listening.")
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		sugarLogger.Info("Shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownPeriod)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			sugarLogger.Errorf("HTTP server graceful shutdown failed: %v", err)
			return fmt.Errorf("http server shutdown error: %w", err)
		}
		sugarLogger.Info("HTTP server shutdown complete.")
		return nil
	})

	workerErrs, shutdownWorkers := worker.RunWorkers(cfg, worker.Deps{
		Accounts: accountRepo,
		Sender:   email.NewSMTPSender(cfg.Email, appLogger),
	}, appLogger)

	g.Go(func() error {
		select {
		case err := <-workerErrs:
			sugarLogger.Error("Asynq worker failed", zap.Error(err))
			return fmt.Errorf("asynq worker error: %w", err)
		case <-groupCtx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownPeriod)
		defer cancel()
		shutdownWorkers(shutdownCtx)
		sugarLogger.Info("Asynq workers finished gracefully.")
		return nil
	})

	sugarLogger.Info("Application started. Waiting for interrupt signal (Ctrl+C) or component error...")

	waitErr := g.Wait()

	sugarLogger.Info("Shutdown sequence finished.")

	if waitErr != nil {
		if errors.Is(waitErr, context.Canceled) {
			sugarLogger.Info("Shutdown reason: Context canceled (likely due to OS signal).")
		} else {
			sugarLogger.Errorf("Application shutdown finished with unexpected error: %v", waitErr)
		}
	} else {
		sugarLogger.Info("Application shutdown successfully (all components finished without errors).")
	}

	sugarLogger.Info("Application exiting now.")
}
