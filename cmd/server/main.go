package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"olexparser/internal/api/router"
	"olexparser/internal/cache"
	"olexparser/internal/config"
	"olexparser/internal/core/repository"
	"olexparser/internal/core/service"
	"olexparser/internal/logger"
	"olexparser/internal/metrics"
	"olexparser/internal/publisher"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	if err := logger.Setup(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile}); err != nil {
		logrus.Fatalf("Failed to set up logging: %v", err)
	}

	// Load MongoDB configuration
	mongoConfig, err := config.NewMongoConfig()
	if err != nil {
		logrus.Fatalf("Invalid MongoDB configuration: %v", err)
	}

	var reportRepo repository.ReportRepository
	if mongoConfig.UseMemory() {
		logrus.Warn("TEST_MODE without MONGODB_URI, reports are kept in memory")
		reportRepo = repository.NewInMemoryReportRepository()
	} else {
		db, err := config.ConnectMongoDB(mongoConfig)
		if err != nil {
			logrus.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		reportRepo = repository.NewMongoReportRepository(db)
	}

	cache.Initialize(cfg.RedisURL)
	defer cache.Close()

	collector := metrics.NewCollector()
	if cfg.MetricsAddr != "" {
		srv := collector.Serve(cfg.MetricsAddr)
		defer srv.Close()
	}

	var notifier service.Notifier
	if cfg.NATSURL != "" {
		pub, err := publisher.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix, collector)
		if err != nil {
			logrus.WithError(err).Warn("NATS unavailable, case notifications disabled")
		} else {
			defer pub.Close()
			notifier = pub
		}
	}

	opts := service.Options{
		Location:  cfg.Location,
		Layout:    cfg.RecordLayout,
		Tolerance: cfg.Tolerance,
		Workers:   cfg.Workers,
	}
	var store service.Cache
	if cache.Enabled() {
		store = cache.NewStore(cfg.CacheTTL)
	}
	caseService := service.NewCaseService(reportRepo, opts, store, collector, notifier)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router.NewRouter(caseService, cfg.JWTSecret),
	}
	if cfg.JWTSecret == "" {
		logrus.Warn("JWT_SECRET not set, API authentication disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logrus.WithField("addr", srv.Addr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
}
