package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"example.com/recommender/internal/app"
	"example.com/recommender/internal/config"
	"example.com/recommender/internal/consumer"
	"example.com/recommender/internal/logging"
	httptransport "example.com/recommender/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(app.LoggingConfig(cfg.Logging))
	if !cfg.KafkaEnabled() {
		logging.Fatal().Msg("KAFKA_BROKERS must be set for the consumer")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	service, err := app.BuildService(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load artifacts")
	}
	publisher := app.BuildPublisher(cfg)
	defer publisher.Close()
	handler := consumer.NewRecommendationHandler(service, publisher)

	var wg sync.WaitGroup

	metricsSrv := httptransport.NewServer(httptransport.ServerConfig{Address: cfg.Metrics.Address, ReadTimeout: 5 * time.Second}, promhttp.Handler())
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := httptransport.Serve(ctx, metricsSrv, cfg.Server.ShutdownTimeout); err != nil {
			logging.Error().Err(err).Msg("metrics server error")
		}
	}()

	for _, topic := range cfg.Kafka.ConsumerTopics {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:        cfg.Kafka.Brokers,
			GroupID:        cfg.Kafka.ConsumerGroup,
			Topic:          topic,
			MinBytes:       1e3,
			MaxBytes:       10e6,
			CommitInterval: time.Second,
		})
		proc := consumer.NewProcessor(reader, handler, consumer.WithLogger(logging.WithComponent("consumer").With().Str("topic", topic).Logger()))

		wg.Add(1)
		go func(tp string, r *kafka.Reader) {
			defer wg.Done()
			defer r.Close()
			if err := proc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logging.Error().Err(err).Str("topic", tp).Msg("consumer stopped with error")
			}
		}(topic, reader)
	}
	logging.Info().Strs("topics", cfg.Kafka.ConsumerTopics).Str("group", cfg.Kafka.ConsumerGroup).Msg("recommendation consumer started")

	<-ctx.Done()
	logging.Info().Msg("recommendation consumer shutting down")
	wg.Wait()
}
