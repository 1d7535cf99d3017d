package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/grahamu/smsgateway/internal/platform/config"
	"github.com/grahamu/smsgateway/internal/platform/database"
	"github.com/grahamu/smsgateway/internal/platform/logger"
	httpadapter "github.com/grahamu/smsgateway/internal/sms/adapters/http"
	"github.com/grahamu/smsgateway/internal/sms/adapters/mailer"
	"github.com/grahamu/smsgateway/internal/sms/app"
	"github.com/grahamu/smsgateway/internal/sms/repository/postgres"
)

const (
	serviceName     = "sms_gateway"
	shutdownTimeout = 15 * time.Second
)

func main() {
	mainCtx, mainCancel := context.WithCancel(context.Background())
	defer mainCancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger = appLogger.With("service", serviceName)
	appLogger.Info("Starting service...")

	appLogger.Info("Configuration loaded",
		"log_level", cfg.LogLevel,
		"postgres_dsn_present", cfg.PostgresDSN != "",
		"http_port", cfg.HTTPPort,
		"smtp_host", cfg.SMTPHost,
	)

	dbPool, err := database.NewDBPool(mainCtx, cfg.PostgresDSN)
	if err != nil {
		appLogger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	appLogger.Info("Database connection pool initialized")

	// Repositories and services
	carrierRepo := postgres.NewPgCarrierRepository(dbPool, appLogger)
	numberRepo := postgres.NewPgPhoneNumberRepository(dbPool, appLogger)
	logRepo := postgres.NewPgDeliveryLogRepository(dbPool, appLogger)

	var transport mailer.Transport
	if cfg.SMTPHost != "" {
		transport = mailer.NewSMTPTransport(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPTLSMode, appLogger)
	} else {
		appLogger.Warn("No SMTP host configured, using mock transport")
		transport = mailer.NewMockTransport(appLogger, 0)
	}

	sendService := app.NewSendService(transport, logRepo, appLogger)
	reportService := app.NewReportService(logRepo, appLogger)

	handler := httpadapter.NewSMSHandler(carrierRepo, numberRepo, sendService, reportService, cfg.DefaultFromAddress, appLogger)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(httpadapter.PrometheusMetricsMiddleware)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Route("/api/v1", handler.RegisterRoutes)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: router,
	}

	g, groupCtx := errgroup.WithContext(mainCtx)

	g.Go(func() error {
		appLogger.Info("HTTP server starting", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			appLogger.Info("Received shutdown signal", "signal", sig.String())
			mainCancel()
		case <-groupCtx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		appLogger.Info("HTTP server stopped")
		return nil
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Service exited with error", "error", err)
		os.Exit(1)
	}
	appLogger.Info("Service stopped")
}
