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

	"go.uber.org/zap"

	"github.com/mercala-commerce/catalog-sync/internal/feed"
	"github.com/mercala-commerce/catalog-sync/internal/handlers"
	"github.com/mercala-commerce/catalog-sync/internal/platform/config"
	"github.com/mercala-commerce/catalog-sync/internal/platform/observability"
	"github.com/mercala-commerce/catalog-sync/internal/services"
	"github.com/mercala-commerce/catalog-sync/internal/store"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("syncd")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		var validation *config.ValidationError
		if errors.As(err, &validation) {
			logger.Fatal("configuration incomplete", zap.Strings("fields", validation.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	feedClient, err := feed.NewClient(feed.ClientDeps{
		Config: feed.Config{
			URL:   cfg.Feed.URL,
			Email: cfg.Feed.Email,
			Token: cfg.Feed.Token,
		},
		Logger: logger.Named("feed"),
	})
	if err != nil {
		logger.Fatal("failed to initialise feed client", zap.Error(err))
	}

	storeClient, err := store.NewClient(store.ClientDeps{
		Config: store.Config{
			BaseURL:        cfg.Store.BaseURL,
			ConsumerKey:    cfg.Store.ConsumerKey,
			ConsumerSecret: cfg.Store.ConsumerSecret,
			Timeout:        cfg.Store.Timeout,
		},
		Logger: logger.Named("store"),
	})
	if err != nil {
		logger.Fatal("failed to initialise store client", zap.Error(err))
	}

	syncService, err := services.NewSyncService(services.SyncServiceDeps{
		Feed:  feedClient,
		Store: storeClient,
		Taxonomy: services.TaxonomyGroups{
			CategoryParent: cfg.Taxonomy.CategoryParent,
			VendorParent:   cfg.Taxonomy.VendorParent,
			TagParent:      cfg.Taxonomy.TagParent,
		},
		Logger: logger.Named("sync"),
	})
	if err != nil {
		logger.Fatal("failed to initialise sync service", zap.Error(err))
	}

	scheduler, err := services.NewScheduler(services.SchedulerDeps{
		Sync:       syncService,
		Interval:   cfg.Sync.Interval,
		RunOnStart: cfg.Sync.RunOnStart,
		Logger:     logger.Named("scheduler"),
	})
	if err != nil {
		logger.Fatal("failed to initialise scheduler", zap.Error(err))
	}

	runHandlers, err := handlers.NewRunHandlers(scheduler, logger.Named("ops"))
	if err != nil {
		logger.Fatal("failed to initialise run handlers", zap.Error(err))
	}

	router := handlers.NewRouter(
		handlers.WithRunRoutes(runHandlers.Register),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		scheduler.Start(runCtx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("ops server listening", zap.String("addr", server.Addr), zap.Duration("sync_interval", cfg.Sync.Interval))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-runCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("ops server failed", zap.Error(err))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("ops server shutdown error", zap.Error(err))
	}

	select {
	case <-schedulerDone:
	case <-shutdownCtx.Done():
		logger.Warn("scheduler did not stop before shutdown deadline")
	}

	logger.Info("syncd stopped")
}
