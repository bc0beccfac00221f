package cmd

import (
	"context"
	"fmt"
	"time"

	"akari/bot"
	"akari/config"
	"akari/database"
	"akari/events"
	"akari/metrics"
	"akari/repository"
	"akari/service"
	"akari/webapi"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application, blocking until the context
// is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	configureLogging(cfg)

	log.Info("Starting AKARI...")

	db, err := database.NewConnection(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	eventBus := events.NewBus()

	collector := metrics.NewEventCollector()
	collector.Register(eventBus)

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	userService := service.NewUserService(uowFactory, cfg)
	pointsService := service.NewPointsService(uowFactory, cfg)
	predictionService := service.NewPredictionService(uowFactory, cfg)
	rewardService := service.NewRewardService(uowFactory, cfg)
	leaderboardService := service.NewLeaderboardService(uowFactory, cfg)
	campaignService := service.NewCampaignService(uowFactory, cfg)

	server := webapi.NewServer(cfg, db,
		userService,
		pointsService,
		predictionService,
		rewardService,
		leaderboardService,
		campaignService,
	)

	errCh := make(chan error, 2)

	go func() {
		log.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := server.Start(); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if cfg.Telegram.Enabled {
		telegramBot, err := bot.New(cfg,
			userService,
			pointsService,
			predictionService,
			rewardService,
			leaderboardService,
			campaignService,
			repository.NewCampaignDraftRepository(db),
		)
		if err != nil {
			return fmt.Errorf("failed to initialize Telegram bot: %w", err)
		}

		go func() {
			if err := telegramBot.Start(ctx); err != nil && err != context.Canceled {
				errCh <- fmt.Errorf("telegram bot: %w", err)
			}
		}()
	} else {
		log.Info("Telegram bot disabled")
	}

	log.WithField("environment", cfg.Environment).Info("AKARI is running")

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}

	log.Info("Shutdown completed")
	return nil
}

func configureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logging.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}
}
