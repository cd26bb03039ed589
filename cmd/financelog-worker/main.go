package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/FjeldMats/FinanceLog/internal/amqp"
	"github.com/FjeldMats/FinanceLog/internal/config"
	applog "github.com/FjeldMats/FinanceLog/internal/log"
	"github.com/FjeldMats/FinanceLog/internal/storage"
	"github.com/FjeldMats/FinanceLog/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		applog.Setup(0).Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		applog.Setup(0).Error("AMQP_URL is required for the audit worker")
		os.Exit(1)
	}

	level, _ := cfg.SlogLevel()
	applog.Setup(level)
	logger := applog.ForComponent(applog.ComponentWorker)

	logger.Info("Starting financelog-worker")

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	auditWorker := worker.NewAuditWorker(repo)

	logger.Info("Consuming transaction events", "queue", cfg.AMQPQueue, "stats_interval", cfg.StatsInterval)
	if err := auditWorker.Run(ctx, amqpClient, cfg.StatsInterval); err != nil {
		logger.Error("Worker failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
