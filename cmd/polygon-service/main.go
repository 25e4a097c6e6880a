package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"polygon-service/internal/config"
	"polygon-service/internal/db"
	httphandler "polygon-service/internal/http"
	"polygon-service/internal/http/middleware"
	"polygon-service/internal/logger"
	"polygon-service/internal/repository"
	"polygon-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment, cfg.LogLevel)

	if cfg.DB.AutoMigrate {
		if err := db.RunMigrations(cfg.DB.DSN, appLogger); err != nil {
			appLogger.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	database, err := db.New(cfg.DB, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}
	sqlDB, err := database.DB()
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to get sql.DB")
	}
	defer sqlDB.Close()

	polygonRepo := repository.NewPolygonRepository(database)
	polygonService := service.NewPolygonService(polygonRepo, appLogger)

	handler := httphandler.NewHandler(polygonService, appLogger)
	router := httphandler.NewRouter(handler, httphandler.RouterOptions{
		Environment: cfg.Environment,
		CORSOrigin:  cfg.HTTP.CORSOrigin,
		RateLimiter: middleware.NewRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window),
		Log:         appLogger,
	})

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info().Str("addr", addr).Str("env", cfg.Environment).Msg("starting polygon service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			appLogger.Error().Err(err).Msg("failed to start server")
			os.Exit(1)
		}
	case <-ctx.Done():
		appLogger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("forced shutdown after timeout")
		os.Exit(1)
	}
	appLogger.Info().Msg("server closed")
}
