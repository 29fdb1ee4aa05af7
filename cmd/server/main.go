package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/redis/go-redis/v9"

	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/observability"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/payments"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/throttle"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	logging.Setup(cfg.Environment)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	clock := clockwork.NewRealClock()

	// PostgreSQL log handler (ERROR+ async batch) and Sentry forwarding
	pgLogHandler := logging.NewPGHandler(db, 5*time.Second)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
		logging.NewSentryHandler(),
	)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, clock, cfg.LogRetention, cleanupDone)

	// Redis (optional; throttle fails open without it)
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = throttle.Connect(context.Background(), cfg.RedisAddr)
		if err != nil {
			slog.Warn("redis unavailable, report throttle disabled", "error", err)
			redisClient = nil
		}
	}

	metrics := observability.NewPrometheusRegistry()

	// Payment processor
	var (
		checkout payments.CheckoutProvider
		verifier payments.WebhookVerifier
	)
	if cfg.StripeSecretKey != "" {
		stripeProvider := payments.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.CheckoutReturnURL)
		checkout, verifier = stripeProvider, stripeProvider
	} else {
		slog.Warn("STRIPE_SECRET_KEY not set, paid showcase submissions are unavailable")
	}

	// Services
	scorer := services.NewRiskScorer()
	reportService := services.NewReportService(db, clock, scorer, metrics)
	showcaseService := services.NewShowcaseService(db, clock, checkout, metrics, services.ShowcaseOptions{
		Window:          cfg.PostWindow,
		FreeRepostLimit: cfg.FreeRepostLimit,
		PriceCents:      cfg.ShowcasePriceCents,
		Currency:        cfg.ShowcaseCurrency,
	})
	paymentService := services.NewPaymentService(db, clock, metrics)
	statsService := services.NewStatsService(db, clock, scorer)
	authService := services.NewAuthService(db, clock, cfg.JWTSecret, cfg.JWTAccessExpiry)

	if err := authService.BootstrapModerator(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		slog.Error("moderator bootstrap failed", "error", err)
		os.Exit(1)
	}

	var reportLimiter *throttle.Limiter
	if redisClient != nil {
		reportLimiter = throttle.New(redisClient, "throttle:reports", cfg.ReportThrottleMax, cfg.ReportThrottleTTL)
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, routes.Handlers{
		Auth:           handlers.NewAuthHandler(authService),
		Health:         handlers.NewHealthHandler(db, redisClient),
		Reports:        handlers.NewReportHandler(reportService, scorer),
		Showcase:       handlers.NewShowcaseHandler(showcaseService),
		Moderation:     handlers.NewModerationHandler(reportService, showcaseService, statsService),
		Webhooks:       handlers.NewWebhookHandler(paymentService, verifier),
		Payments:       handlers.NewPaymentHandler(paymentService),
		ReportThrottle: middleware.Throttle(reportLimiter, "reports", metrics),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
