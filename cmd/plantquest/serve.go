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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Ramouth/BiomeQuest-sub000/internal/api"
	"github.com/Ramouth/BiomeQuest-sub000/internal/api/tracker"
	"github.com/Ramouth/BiomeQuest-sub000/internal/cache"
	"github.com/Ramouth/BiomeQuest-sub000/internal/config"
	"github.com/Ramouth/BiomeQuest-sub000/internal/notify"
	"github.com/Ramouth/BiomeQuest-sub000/internal/repository"
	"github.com/Ramouth/BiomeQuest-sub000/internal/service/badges"
	"github.com/Ramouth/BiomeQuest-sub000/internal/service/consumption"
	"github.com/Ramouth/BiomeQuest-sub000/internal/service/summary"
	"github.com/Ramouth/BiomeQuest-sub000/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg, log)
	},
}

func serve(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := cfg.Engine.GetLocation()
	if err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}

	db, err := repository.NewDB(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			return fmt.Errorf("failed to auto-migrate: %w", err)
		}
		log.Info().Msg("Database schema auto-migrated")
	}

	deps := api.Dependencies{
		Database: db,
		Metrics:  cfg.Metrics.Prometheus,
		Log:      log,
	}

	var summaryOpts []summary.Option
	if cfg.Database.Redis.Host != "" {
		redisCache, err := cache.NewRedisCache(&cfg.Database.Redis, log.Component("cache"))
		if err != nil {
			return err
		}
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close redis")
			}
		}()
		summaryOpts = append(summaryOpts, summary.WithCache(redisCache, cfg.Engine.SummaryTTL()))
		deps.Cache = redisCache
	} else {
		log.Info().Msg("Redis not configured, summary caching disabled")
	}

	badgeRepo := repository.NewBadgeRepository(db)
	badgeService := badges.NewService(badgeRepo, log.Component("badges"))
	summaryService := summary.NewService(
		repository.NewConsumptionRepository(db),
		repository.NewUserRepository(db),
		badgeRepo,
		loc,
		log.Component("summary"),
		summaryOpts...,
	)
	logService := consumption.NewService(db, loc, log.Component("consumption"),
		consumption.WithCacheInvalidator(summaryService),
		consumption.WithHolderGauges(badgeService),
		consumption.WithNotifier(notify.NewClient(&cfg.Notify, log.Component("notify"))),
	)

	deps.Handler = tracker.NewHandler(logService, summaryService, badgeService, repository.NewPlantRepository(db), log.Component("api"))

	if catalogBadges, err := badgeService.GetBadgeCatalog(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to load badge catalog for holder gauges")
	} else {
		badgeService.RefreshHolderGauges(ctx, catalogBadges)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("environment", cfg.Server.Environment).Str("timezone", loc.String()).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info().Msg("HTTP server stopped")
	return nil
}
