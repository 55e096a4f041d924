// Package app wires configuration into the service and its collaborators. It is shared by
// the API server and the Kafka consumer.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/recommender/internal/classifier"
	"example.com/recommender/internal/config"
	"example.com/recommender/internal/domain"
	"example.com/recommender/internal/features"
	"example.com/recommender/internal/knowledge"
	"example.com/recommender/internal/logging"
	"example.com/recommender/internal/publish"
)

// BuildService loads the model artifacts and knowledge bases named by cfg.
func BuildService(ctx context.Context, cfg *config.Config) (*domain.Service, error) {
	columns, err := classifier.LoadColumns(cfg.Model.TrainingColumnsPath)
	if err != nil {
		return nil, err
	}
	schema, err := features.NewSchema(columns)
	if err != nil {
		return nil, err
	}
	model, err := classifier.LoadLightGBM(cfg.Model.Path, cfg.Model.ClassesPath)
	if err != nil {
		return nil, err
	}

	src, closeSrc, err := OpenKnowledge(ctx, cfg.Knowledge)
	if err != nil {
		return nil, err
	}
	defer closeSrc()

	exercises, diets, err := knowledge.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("load knowledge base (%s): %w", cfg.Knowledge.Source, err)
	}
	logging.Info().
		Str("source", cfg.Knowledge.Source).
		Int("exercise_rows", exercises.Len()).
		Int("diet_rows", diets.Len()).
		Int("classes", len(model.Classes())).
		Msg("artifacts loaded")

	return domain.NewService(schema, model, exercises, diets, domain.Options{
		TopN:            cfg.Recommend.TopN,
		DefaultDietType: cfg.Recommend.DefaultDietType,
		DefaultMealType: cfg.Recommend.DefaultMealType,
	})
}

// OpenKnowledge returns the configured knowledge source and a func releasing it. The
// tables are read once at startup so the source is closed as soon as they are loaded.
func OpenKnowledge(ctx context.Context, cfg config.KnowledgeConfig) (knowledge.Source, func(), error) {
	switch cfg.Source {
	case config.SourceCSV, "":
		return knowledge.CSVSource{ExercisePath: cfg.ExercisePath, DietPath: cfg.DietPath}, func() {}, nil
	case config.SourceSQLite:
		store, err := knowledge.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case config.SourcePostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return knowledge.NewPostgresStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown knowledge source %q", cfg.Source)
	}
}

// BuildPublisher selects Kafka, the webhook, both, or neither depending on what is
// configured.
func BuildPublisher(cfg *config.Config) publish.Publisher {
	var targets publish.Fanout
	if cfg.KafkaEnabled() {
		targets = append(targets, publish.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.RecommendationTopic, cfg.Kafka.PublishTimeout))
		logging.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.RecommendationTopic).Msg("kafka publisher enabled")
	}
	if cfg.Webhook.URL != "" {
		targets = append(targets, publish.NewWebhookPublisher(cfg.Webhook.URL, cfg.Webhook.Token, cfg.Webhook.Timeout))
		logging.Info().Str("url", cfg.Webhook.URL).Msg("webhook publisher enabled")
	}

	switch len(targets) {
	case 0:
		return publish.NoopPublisher{}
	case 1:
		return targets[0]
	default:
		return targets
	}
}

// LoggingConfig converts the configuration section into logging.Config.
func LoggingConfig(cfg config.LoggingConfig) logging.Config {
	return logging.Config{Level: cfg.Level, Format: cfg.Format, Caller: cfg.Caller}
}
