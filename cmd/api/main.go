package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/brightpaw/vetclinic-platform/internal/api/router"
	"github.com/brightpaw/vetclinic-platform/internal/appointments"
	"github.com/brightpaw/vetclinic-platform/internal/availability"
	appconfig "github.com/brightpaw/vetclinic-platform/internal/config"
	"github.com/brightpaw/vetclinic-platform/internal/customers"
	"github.com/brightpaw/vetclinic-platform/internal/http/handlers"
	"github.com/brightpaw/vetclinic-platform/internal/notify"
	"github.com/brightpaw/vetclinic-platform/internal/observability/metrics"
	"github.com/brightpaw/vetclinic-platform/internal/payments"
	"github.com/brightpaw/vetclinic-platform/internal/postgres"
	"github.com/brightpaw/vetclinic-platform/internal/practitioners"
	"github.com/brightpaw/vetclinic-platform/internal/triage"
	"github.com/brightpaw/vetclinic-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting vetclinic-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Repositories.
	practitionerRepo := practitioners.NewPostgresRepository(pool)
	customerRepo := customers.NewPostgresRepository(pool)
	questionnaireRepo := triage.NewPostgresRepository(pool)
	appointmentRepo := appointments.NewPostgresRepository(pool, questionnaireRepo)

	// Availability cache is optional: without Redis every read recomputes.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient = redis.NewClient(opts)
	}
	cache := availability.NewCache(redisClient, cfg.AvailabilityTTL)
	resolver := availability.NewResolver(practitionerRepo, appointmentRepo, cache, logger)

	// Email notifications degrade to a logging stub without an API key.
	var emailSender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		emailSender = sg
	} else {
		emailSender = notify.NewStubEmailSender(logger)
	}
	notifier := notify.NewService(emailSender, customerRepo, practitionerRepo, logger)

	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)

	// Bookings invalidate the cached availability view before notifying.
	observer := availability.NewBookingObserver(cache, notifier)
	appointmentService := appointments.NewService(appointmentRepo, practitionerRepo, observer, bookingMetrics, logger)
	paymentService := payments.NewService(
		payments.NewPostgresCardStore(pool),
		payments.NewPostgresSettlementStore(pool),
		cfg.PaymentDeclineRate,
		cfg.PaymentCurrency,
		logger,
	)

	routerCfg := &router.Config{
		Logger:              logger,
		AppointmentsHandler: appointments.NewHandler(appointmentService, logger),
		TriageHandler:       triage.NewHandler(questionnaireRepo, logger),
		PaymentsHandler:     payments.NewHandler(paymentService, logger),
		DirectoryHandler:    handlers.NewDirectoryHandler(practitionerRepo, resolver, logger),
		AdminDashboard:      handlers.NewAdminDashboardHandler(pool, practitionerRepo, logger),
		MetricsHandler:      promhttp.Handler(),
		JWTSecret:           cfg.JWTSecret,
		CORSAllowedOrigins:  splitOrigins(cfg.CORSAllowedOrigins),
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func splitOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
