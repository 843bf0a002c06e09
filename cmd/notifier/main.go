package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nekogravitycat/ev-rental-backend/internal/config"
	"github.com/nekogravitycat/ev-rental-backend/internal/notify"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadNotifier()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logg := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "notifier", Default: true})

	var sender notify.Sender = notify.NewLogSender(logg)
	if cfg.OperatorWebhookURL != "" {
		sender = notify.NewHTTPSender(cfg.OperatorWebhookURL, cfg.DeliveryTimeout)
	} else {
		logg.Warn("OPERATOR_WEBHOOK_URL not set, notifications are only logged")
	}

	worker := notify.NewWorker(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, sender, logg)
	defer worker.Close()

	logg.Info("notifier running", "topic", cfg.Kafka.NotificationsTopic, "group", cfg.Kafka.GroupID)
	if err := worker.Run(ctx); err != nil {
		logg.Error("notifier stopped", "error", err)
	}
	logg.Info("notifier exited gracefully")
}
