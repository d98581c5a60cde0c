package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tavolaworks/tavola/internal"
	"github.com/tavolaworks/tavola/internal/cookie"
	"github.com/tavolaworks/tavola/internal/email"
	"github.com/tavolaworks/tavola/internal/events"
	adminhandler "github.com/tavolaworks/tavola/internal/handler/admin"
	staffhandler "github.com/tavolaworks/tavola/internal/handler/staff"
	"github.com/tavolaworks/tavola/internal/handler/storefront"
	"github.com/tavolaworks/tavola/internal/middleware"
	"github.com/tavolaworks/tavola/internal/postgres"
	"github.com/tavolaworks/tavola/internal/router"
	"github.com/tavolaworks/tavola/internal/routes"
	"github.com/tavolaworks/tavola/internal/service"
	"github.com/tavolaworks/tavola/internal/storage"
	"github.com/tavolaworks/tavola/internal/telemetry"
	"github.com/tavolaworks/tavola/internal/worker"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize Sentry error tracking
	sentryCleanup, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Enabled:          cfg.Sentry.Enabled,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Sentry.Release,
		SampleRate:       cfg.Sentry.SampleRate,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
		Debug:            cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer sentryCleanup()

	// Run migrations over database/sql
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return fmt.Errorf("migration failed: %w", err)
	}
	sqlDB.Close()
	logger.Info("Database migrations completed")

	// Application connection pool
	pool, err := postgres.Connect(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Stores
	catalog := postgres.NewCatalogService(pool)
	cartStore := postgres.NewCartStore(pool)
	orderStore := postgres.NewOrderStore(pool)
	paymentStore := postgres.NewPaymentStore(pool)

	// Receipt image storage
	files, err := storage.New(storage.Config{
		Provider:    cfg.Storage.Provider,
		LocalPath:   cfg.Storage.LocalPath,
		LocalURL:    cfg.Storage.LocalURL,
		S3Endpoint:  cfg.Storage.S3Endpoint,
		S3Region:    cfg.Storage.S3Region,
		S3AccessKey: cfg.Storage.S3AccessKey,
		S3SecretKey: cfg.Storage.S3SecretKey,
		S3Bucket:    cfg.Storage.S3Bucket,
		S3PublicURL: cfg.Storage.S3PublicURL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("Storage initialized", "provider", cfg.Storage.Provider)

	// Event publisher
	var publisher events.Publisher = events.Noop{}
	if cfg.NATS.URL != "" {
		natsPublisher, err := events.NewNATSPublisher(events.NATSConfig{
			URL:  cfg.NATS.URL,
			Name: cfg.NATS.Name,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		publisher = natsPublisher
		logger.Info("NATS publisher connected", "url", cfg.NATS.URL)
	} else {
		logger.Info("No NATS URL configured, events disabled")
	}
	defer publisher.Close()

	// Email notifications
	var sender email.Sender = email.Noop{}
	if cfg.Email.Enabled {
		sender = email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.Email.Host,
			Port:     int(cfg.Email.Port),
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
			FromName: cfg.Email.FromName,
		}, logger)
		logger.Info("SMTP sender initialized", "host", cfg.Email.Host)
	} else {
		logger.Info("SMTP disabled, notifications will be dropped")
	}
	notifier := email.NewService(sender, logger)

	// Services
	cartService := service.NewCartService(cartStore)
	orderService := service.NewOrderService(orderStore, cartStore, publisher, notifier, cfg.DeliveryFeeCents, logger)
	paymentService := service.NewPaymentService(paymentStore, orderStore, files, publisher, notifier, logger)

	// Background cart cleanup
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	go worker.New(worker.DefaultConfig(), cartStore, logger).Run(workerCtx)

	// Metrics
	telemetry.NewBusinessMetrics("tavola")
	metrics := middleware.NewMetrics("tavola")

	// Cookies
	cookies := cookie.NewConfig(cfg.Env == "prod")

	// Rate limiting: a general limit on everything, a strict one on proof
	// uploads.
	defaultRateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	defer defaultRateLimiter.Stop()
	proofRateLimiter := middleware.NewRateLimiter(middleware.StrictRateLimiterConfig())
	defer proofRateLimiter.Stop()

	// Route dependencies
	storefrontDeps := routes.StorefrontDeps{
		MenuHandler:      storefront.NewMenuHandler(catalog, logger),
		CartHandler:      storefront.NewCartHandler(cartService, catalog, cookies, logger),
		OrderHandler:     storefront.NewOrderHandler(orderService, cartService, cookies, logger),
		PaymentHandler:   storefront.NewPaymentHandler(paymentService, logger),
		ProofRateLimiter: proofRateLimiter,
	}
	staffDeps := routes.StaffDeps{
		OrderHandler: staffhandler.NewOrderHandler(orderService, logger),
	}
	adminDeps := routes.AdminDeps{
		DishHandler:    adminhandler.NewDishHandler(catalog, logger),
		OrderHandler:   adminhandler.NewOrderHandler(orderService, logger),
		PaymentHandler: adminhandler.NewPaymentHandler(paymentService, logger),
	}

	// Router and middleware chain
	r := router.New(
		router.Recovery(logger),
		router.CORS(cfg.AllowedOrigins),
		middleware.RequestID,
		metrics.Middleware,
		middleware.MaxBodySize(middleware.DefaultMaxBodySize),
		middleware.Timeout(middleware.DefaultTimeout),
		defaultRateLimiter.Middleware,
		middleware.WithPrincipal(),
		middleware.WithRequestLogger(logger),
		telemetry.SentryMiddleware(sentryUser),
		router.Logger(logger),
	)

	// Locally stored receipt images
	if cfg.Storage.Provider == "local" || cfg.Storage.Provider == "" {
		r.Static("/uploads/", cfg.Storage.LocalPath)
	}

	// Metrics endpoint; protect via firewall in production
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := pool.Ping(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("database unreachable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	routes.RegisterStorefrontRoutes(r, storefrontDeps)
	routes.RegisterStaffRoutes(r, staffDeps)
	routes.RegisterAdminRoutes(r, adminDeps)

	// Start the server with graceful shutdown
	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		logger.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

// sentryUser exposes the authenticated principal to Sentry scopes.
func sentryUser(ctx context.Context) *telemetry.UserInfo {
	principal, ok := middleware.GetPrincipal(ctx)
	if !ok {
		return nil
	}
	return &telemetry.UserInfo{ID: principal.UserID.String(), Email: principal.Email}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
