package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/fadhlanhapp/settleup-engine/config"
	"github.com/fadhlanhapp/settleup-engine/events"
	"github.com/fadhlanhapp/settleup-engine/handlers"
	"github.com/fadhlanhapp/settleup-engine/logging"
	"github.com/fadhlanhapp/settleup-engine/repository"
	"github.com/fadhlanhapp/settleup-engine/routes"
	"github.com/fadhlanhapp/settleup-engine/services"
)

func main() {
	// Load environment variables
	config.LoadDotEnv()
	logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize New Relic
	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.NewRelicAppName),
		newrelic.ConfigLicense(cfg.NewRelicLicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigEnabled(cfg.NewRelicLicenseKey != ""),
	)
	if err != nil {
		slog.Warn("Failed to initialize New Relic", "error", err)
		app = nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	if err := repository.InitDB(ctx, cfg); err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer repository.CloseDB()

	db := repository.GetDB()
	expenseRepo := repository.NewExpenseRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	groupRepo := repository.NewGroupRepository(db, expenseRepo, paymentRepo)

	settlementService := services.NewSettlementService(groupRepo)

	// Group change events
	var publisher services.EventPublisher = events.NoopPublisher{}
	if cfg.EventsEnabled() {
		client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.Error("Failed to connect to AMQP", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client

		refresher := events.NewRefresher(settlementService, cfg.RefreshDebounce, cfg.FetchTimeout)
		defer refresher.Stop()
		go func() {
			if err := client.Listen(ctx, refresher.HandleMessage); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("Group change consumer stopped", "error", err)
			}
		}()
	}

	handlerServices := &handlers.HandlerServices{
		GroupService:          services.NewGroupService(groupRepo, publisher),
		PaymentService:        services.NewPaymentService(paymentRepo, groupRepo, publisher),
		SettlementService:     settlementService,
		ReconciliationService: services.NewReconciliationService(groupRepo),
		DashboardService:      services.NewDashboardService(groupRepo, groupRepo, cfg.FetchConcurrency, cfg.FetchTimeout),
		ExcelService:          services.NewExcelService(groupRepo),
	}

	// Set up Gin router
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), handlers.RequestID())

	// Add New Relic middleware
	if app != nil {
		router.Use(nrgin.Middleware(app))
	}

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", handlers.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", handlers.RequestIDHeader},
		// Browsers refuse credentials on a wildcard origin
		AllowCredentials: !slices.Contains(cfg.CORSAllowOrigins, "*"),
		MaxAge:           12 * time.Hour,
	}))

	// Set up routes
	routes.SetupRoutes(router, handlers.NewHandlers(handlerServices))

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	// Graceful shutdown handling
	stopped := make(chan struct{})
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		slog.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		cancel()
		close(stopped)
	}()

	slog.Info("Server starting", "port", cfg.Port, "db_driver", cfg.DBDriver, "events", cfg.EventsEnabled())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-stopped
	if app != nil {
		app.Shutdown(5 * time.Second)
	}
	slog.Info("Server stopped gracefully")
}
