// Package config loads runtime settings in three layers: built-in defaults, an optional
// YAML file and environment variables.
package config

import (
	"time"
)

// Knowledge base sources.
const (
	SourceCSV      = "csv"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

// Config captures runtime configuration for the recommendation service and consumer.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Model     ModelConfig     `koanf:"model"`
	Knowledge KnowledgeConfig `koanf:"knowledge"`
	Recommend RecommendConfig `koanf:"recommend"`
	Logging   LoggingConfig   `koanf:"logging"`
	Security  SecurityConfig  `koanf:"security"`
	Kafka     KafkaConfig     `koanf:"kafka"`
	Webhook   WebhookConfig   `koanf:"webhook"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address         string        `koanf:"address"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// ModelConfig points at the trained classifier artifacts.
type ModelConfig struct {
	Path                string `koanf:"path"`
	ClassesPath         string `koanf:"classes_path"`
	TrainingColumnsPath string `koanf:"training_columns_path"`
}

// KnowledgeConfig selects where the knowledge bases are read from.
type KnowledgeConfig struct {
	Source       string `koanf:"source"`
	ExercisePath string `koanf:"exercise_path"`
	DietPath     string `koanf:"diet_path"`
	SQLitePath   string `koanf:"sqlite_path"`
	PostgresURL  string `koanf:"postgres_url"`
}

// RecommendConfig tunes response assembly.
type RecommendConfig struct {
	TopN            int    `koanf:"top_n"`
	DefaultDietType string `koanf:"default_diet_type"`
	DefaultMealType string `koanf:"default_meal_type"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SecurityConfig covers auth, CORS and rate limiting.
type SecurityConfig struct {
	AuthEnabled       bool          `koanf:"auth_enabled"`
	JWTSecret         string        `koanf:"jwt_secret"`
	JWTIssuer         string        `koanf:"jwt_issuer"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitEnabled  bool          `koanf:"rate_limit_enabled"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// KafkaConfig configures event publishing and the asynchronous consumer.
type KafkaConfig struct {
	Brokers             []string      `koanf:"brokers"`
	RecommendationTopic string        `koanf:"recommendation_topic"`
	ConsumerGroup       string        `koanf:"consumer_group"`
	ConsumerTopics      []string      `koanf:"consumer_topics"`
	PublishTimeout      time.Duration `koanf:"publish_timeout"`
}

// WebhookConfig configures optional HTTP delivery of recommendation events.
type WebhookConfig struct {
	URL     string        `koanf:"url"`
	Token   string        `koanf:"token"`
	Timeout time.Duration `koanf:"timeout"`
}

// MetricsConfig configures the standalone metrics listener used by the consumer.
type MetricsConfig struct {
	Address string `koanf:"address"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":5000",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Model: ModelConfig{
			Path:                "artifacts/model.txt",
			ClassesPath:         "artifacts/classes.json",
			TrainingColumnsPath: "artifacts/training_columns.json",
		},
		Knowledge: KnowledgeConfig{
			Source:       SourceCSV,
			ExercisePath: "artifacts/knowledge_base.csv",
			DietPath:     "artifacts/diet_knowledge_base.csv",
			SQLitePath:   "artifacts/knowledge.db",
		},
		Recommend: RecommendConfig{
			TopN:            4,
			DefaultDietType: "Balanced",
			DefaultMealType: "Lunch",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Security: SecurityConfig{
			JWTIssuer:         "i5e.identity",
			CORSOrigins:       []string{"http://localhost:5173"},
			RateLimitEnabled:  true,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Kafka: KafkaConfig{
			RecommendationTopic: "recommendation_events",
			ConsumerGroup:       "recommendation-consumer",
			ConsumerTopics:      []string{"profile_events"},
			PublishTimeout:      5 * time.Second,
		},
		Webhook: WebhookConfig{
			Timeout: 5 * time.Second,
		},
		Metrics: MetricsConfig{
			Address: ":9195",
		},
	}
}

// KafkaEnabled reports whether a broker list is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}
