package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sarthaksaklani/enakart/internal/cache"
	"github.com/sarthaksaklani/enakart/internal/config"
	"github.com/sarthaksaklani/enakart/internal/db"
	"github.com/sarthaksaklani/enakart/internal/events"
	"github.com/sarthaksaklani/enakart/internal/notification"
)

const (
	consumerName = "notifier"
	dedupTTL     = 72 * time.Hour
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.App.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.App.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", consumerName).Logger()

	if !cfg.Kafka.Enabled() {
		log.Fatal().Msg("KAFKA_BROKERS is required for the notifier")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pg.Close()

	rdb, err := cache.New(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close redis client")
		}
	}()

	notificationSvc := notification.NewService(notification.NewRepository(pg.Pool))
	handler := events.Deduplicate(cache.NewDeduper(rdb, consumerName, dedupTTL), notificationSvc.HandleOrderEvent)

	consumer := events.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.OrderTopic, cfg.Kafka.Workers)

	log.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.OrderTopic).
		Str("group", cfg.Kafka.GroupID).
		Int("workers", cfg.Kafka.Workers).
		Msg("Notifier consuming order events")

	if err := consumer.Run(ctx, handler); err != nil {
		log.Error().Err(err).Msg("Consumer stopped with error")
		return
	}
	log.Info().Msg("Notifier stopped gracefully")
}
