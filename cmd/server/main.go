package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	handlers "github.com/niteshmahajan-63/thewell-checkout/internal/adapter/handler/http"
	"github.com/niteshmahajan-63/thewell-checkout/internal/adapter/handler/ws"
	"github.com/niteshmahajan-63/thewell-checkout/internal/config"
	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/provider"
	"github.com/niteshmahajan-63/thewell-checkout/internal/infrastructure/crm/zoho"
	"github.com/niteshmahajan-63/thewell-checkout/internal/infrastructure/database"
	grpcServer "github.com/niteshmahajan-63/thewell-checkout/internal/infrastructure/grpc"
	httpServer "github.com/niteshmahajan-63/thewell-checkout/internal/infrastructure/http"
	stripeProvider "github.com/niteshmahajan-63/thewell-checkout/internal/infrastructure/provider/stripe"
	"github.com/niteshmahajan-63/thewell-checkout/internal/infrastructure/realtime"
	"github.com/niteshmahajan-63/thewell-checkout/internal/usecase"
	"github.com/niteshmahajan-63/thewell-checkout/pkg/logger"
	"github.com/niteshmahajan-63/thewell-checkout/pkg/messaging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger = zapLogger.With(
		zap.String("service", cfg.Service.Name),
		zap.String("environment", cfg.Service.Environment),
	)

	db, err := openDatabase(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	repos := database.NewRepositories(db, zapLogger)

	if cfg.Service.StripeWebhookSecret == "" {
		zapLogger.Warn("Stripe webhook signing key is not configured; every webhook will be rejected",
			zap.String("setting", stripeProvider.WebhookSigningKeySetting))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	verifier := stripeProvider.NewWebhookVerifier(cfg.Service.StripeWebhookSecret, zapLogger)
	processor := stripeProvider.NewPaymentProcessor(cfg.Service.StripeSecretKey, nil, zapLogger)
	crm := zoho.NewClient(cfg.Zoho, zapLogger)

	hub := realtime.NewHub(cfg.Realtime.SendBuffer, zapLogger)
	var notifier provider.Notifier = hub
	if cfg.Realtime.Redis.Enabled {
		redisClient, err := messaging.NewRedisClient(cfg.Realtime.Redis.Addr, cfg.Realtime.Redis.Password, cfg.Realtime.Redis.DB)
		if err != nil {
			zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()

		relay := realtime.NewRedisRelay(redisClient, cfg.Realtime.Channel, hub, zapLogger)
		notifier = relay
		go func() {
			if err := relay.Run(ctx); err != nil && ctx.Err() == nil {
				zapLogger.Error("Realtime relay stopped; events now reach this instance's sessions only",
					zap.String("channel", cfg.Realtime.Channel),
					zap.String("redis_addr", cfg.Realtime.Redis.Addr),
					zap.Error(err))
			}
		}()
	}

	applier := usecase.NewTransitionApplier(repos.Mirror, processor, zapLogger)
	dispatcher := usecase.NewFanoutDispatcher(notifier, crm, zapLogger)
	webhookService := usecase.NewWebhookService(verifier, repos.Mirror, repos.WebhookEvent, applier, dispatcher, zapLogger)
	checkoutService := usecase.NewCheckoutService(crm, processor, repos.Mirror, zapLogger)

	grpcSrv := grpcServer.NewServer(cfg, zapLogger)
	httpSrv := httpServer.NewServer(cfg, zapLogger, httpServer.Handlers{
		Webhook:  handlers.NewWebhookHandler(zapLogger, webhookService),
		Checkout: handlers.NewCheckoutHandler(zapLogger, checkoutService),
		Internal: handlers.NewInternalHandler(zapLogger, checkoutService, repos.WebhookEvent),
		Payments: ws.NewPaymentsHandler(hub, cfg.Service.ClientURLs, zapLogger),
	})

	go func() {
		if err := grpcSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start gRPC server", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down servers...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	if grpcSrv.Enabled() {
		if err := grpcSrv.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("Failed to shutdown gRPC server", zap.Error(err))
		}
	}

	zapLogger.Info("Servers shut down successfully")
}

func openDatabase(cfg *config.Config, zapLogger *zap.Logger) (*gorm.DB, error) {
	if cfg.Database.Driver == "sqlite" {
		zapLogger.Warn("Using in-memory SQLite database; data is lost on restart")
		return database.NewInMemory(zapLogger)
	}

	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, zapLogger); err != nil {
		return nil, err
	}
	return db, nil
}
