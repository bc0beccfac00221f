package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"akari/cmd"
	"akari/config"
	"akari/database"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("AKARI_CONFIG"))
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(cfg); err != nil {
			log.WithError(err).Fatal("Migration failed")
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := cmd.Run(ctx, cfg); err != nil {
		log.WithError(err).Fatal("Application error")
	}
}

func handleMigrationCommand(cfg *config.Config) error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: akari migrate [up|down|status] [args...]")
	}

	switch os.Args[2] {
	case "up":
		return database.MigrateUp(cfg.Database.URL)
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(cfg.Database.URL, steps)
	case "status":
		return database.MigrateStatus(cfg.Database.URL)
	default:
		return fmt.Errorf("unknown migration command: %s", os.Args[2])
	}
}
