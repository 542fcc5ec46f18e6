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

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"github.com/foodchainx/api/internal/domain"
	"github.com/foodchainx/api/internal/handlers"
	"github.com/foodchainx/api/internal/integrations/analysis"
	"github.com/foodchainx/api/internal/integrations/telemetry"
	"github.com/foodchainx/api/internal/platform/auth"
	"github.com/foodchainx/api/internal/platform/config"
	pfirestore "github.com/foodchainx/api/internal/platform/firestore"
	"github.com/foodchainx/api/internal/platform/jobs"
	"github.com/foodchainx/api/internal/platform/observability"
	firestoreRepo "github.com/foodchainx/api/internal/repositories/firestore"
	"github.com/foodchainx/api/internal/services"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	baseLogger := observability.NewLogger(cfg.Logging.Level)
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	if _, err := firestoreProvider.Client(ctx); err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := firestoreProvider.Close(closeCtx); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.Notifications.ProjectID)
	if err != nil {
		logger.Fatal("failed to initialise pubsub client", zap.Error(err))
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logger.Warn("pubsub close error", zap.Error(err))
		}
	}()

	notificationTopic := pubsubClient.Topic(cfg.Notifications.Topic)
	defer notificationTopic.Stop()

	publisher, err := jobs.NewPubSubNotificationPublisher(notificationTopic)
	if err != nil {
		logger.Fatal("failed to initialise notification publisher", zap.Error(err))
	}

	verifier, err := auth.NewHMACVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		logger.Fatal("failed to initialise token verifier", zap.Error(err))
	}
	authenticator := auth.NewAuthenticator(verifier, auth.WithFallbackRole(auth.RoleProcurement))

	orderRepo, err := firestoreRepo.NewOrderRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise order repository", zap.Error(err))
	}
	paymentRepo, err := firestoreRepo.NewPaymentRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise payment repository", zap.Error(err))
	}
	vendorRepo, err := firestoreRepo.NewVendorRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise vendor repository", zap.Error(err))
	}
	productRepo, err := firestoreRepo.NewVendorProductRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise product repository", zap.Error(err))
	}
	inventoryRepo, err := firestoreRepo.NewInventoryRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise inventory repository", zap.Error(err))
	}
	healthRepo, err := firestoreRepo.NewHealthRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise health repository", zap.Error(err))
	}

	settlementService, err := services.NewSettlementService(services.SettlementServiceDeps{
		Payments:     paymentRepo,
		Orders:       orderRepo,
		Vendors:      vendorRepo,
		Publisher:    publisher,
		Clock:        time.Now,
		NewPaymentID: domain.NewPaymentID,
		Logger:       serviceLogger(logger.Named("payments")),
	})
	if err != nil {
		logger.Fatal("failed to initialise settlement service", zap.Error(err))
	}

	orderService, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:     orderRepo,
		Vendors:    vendorRepo,
		Payments:   settlementService,
		Publisher:  publisher,
		Clock:      time.Now,
		NewOrderID: domain.NewOrderID,
		Logger:     serviceLogger(logger.Named("orders")),
	})
	if err != nil {
		logger.Fatal("failed to initialise order service", zap.Error(err))
	}

	statsService, err := services.NewStatsService(services.StatsServiceDeps{
		Orders:   orderRepo,
		Payments: paymentRepo,
		Vendors:  vendorRepo,
		Clock:    time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise stats service", zap.Error(err))
	}

	vendorService, err := services.NewVendorService(services.VendorServiceDeps{
		Vendors:   vendorRepo,
		Products:  productRepo,
		Publisher: publisher,
		Clock:     time.Now,
		Logger:    serviceLogger(logger.Named("vendors")),
	})
	if err != nil {
		logger.Fatal("failed to initialise vendor service", zap.Error(err))
	}

	inventoryService, err := services.NewInventoryService(services.InventoryServiceDeps{
		Inventory: inventoryRepo,
		Clock:     time.Now,
		Logger:    serviceLogger(logger.Named("inventory")),
	})
	if err != nil {
		logger.Fatal("failed to initialise inventory service", zap.Error(err))
	}

	systemService, err := services.NewSystemService(services.SystemServiceDeps{
		Health: healthRepo,
	})
	if err != nil {
		logger.Fatal("failed to initialise system service", zap.Error(err))
	}

	telemetryClient := telemetry.NewClient(cfg.Telemetry)
	analysisClient := analysis.NewClient(cfg.Analysis)

	orderHandlers := handlers.NewOrderHandlers(authenticator, orderService, settlementService, statsService)
	paymentHandlers := handlers.NewPaymentHandlers(authenticator, settlementService, statsService)
	vendorHandlers := handlers.NewVendorHandlers(authenticator, vendorService)
	inventoryHandlers := handlers.NewInventoryHandlers(authenticator, inventoryService)
	deviceHandlers := handlers.NewDeviceHandlers(authenticator, telemetryClient)
	analysisHandlers := handlers.NewAnalysisHandlers(authenticator, analysisClient)

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithReadinessCheck("firestore", systemService.Readiness),
	)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger.Named("http")),
			observability.RecoveryMiddleware(logger.Named("http")),
			observability.RequestLoggerMiddleware(),
		),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithOrderRoutes(orderHandlers.Routes),
		handlers.WithPaymentRoutes(paymentHandlers.Routes),
		handlers.WithVendorRoutes(vendorHandlers.Routes),
		handlers.WithInventoryRoutes(inventoryHandlers.Routes),
		handlers.WithDeviceRoutes(deviceHandlers.Routes),
		handlers.WithAnalysisRoutes(analysisHandlers.Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("foodchainx api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func serviceLogger(logger *zap.Logger) func(ctx context.Context, event string, fields map[string]any) {
	return func(_ context.Context, event string, fields map[string]any) {
		zFields := make([]zap.Field, 0, len(fields)+1)
		zFields = append(zFields, zap.String("event", event))
		for k, v := range fields {
			zFields = append(zFields, zap.Any(k, v))
		}
		logger.Info("service event", zFields...)
	}
}
