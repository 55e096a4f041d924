package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/recommender/config.yaml",
}

// envMappings maps environment variables to koanf paths. Variables outside the table are
// ignored.
var envMappings = map[string]string{
	"http_address":          "server.address",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	"model_path":            "model.path",
	"classes_path":          "model.classes_path",
	"training_columns_path": "model.training_columns_path",

	"kb_source":        "knowledge.source",
	"exercise_kb_path": "knowledge.exercise_path",
	"diet_kb_path":     "knowledge.diet_path",
	"kb_sqlite_path":   "knowledge.sqlite_path",
	"kb_postgres_url":  "knowledge.postgres_url",

	"top_n":             "recommend.top_n",
	"default_diet_type": "recommend.default_diet_type",
	"default_meal_type": "recommend.default_meal_type",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"auth_enabled":        "security.auth_enabled",
	"jwt_secret":          "security.jwt_secret",
	"jwt_issuer":          "security.jwt_issuer",
	"cors_origins":        "security.cors_origins",
	"rate_limit_enabled":  "security.rate_limit_enabled",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",

	"kafka_brokers":         "kafka.brokers",
	"recommendation_topic":  "kafka.recommendation_topic",
	"consumer_group_id":     "kafka.consumer_group",
	"consumer_topics":       "kafka.consumer_topics",
	"kafka_publish_timeout": "kafka.publish_timeout",

	"webhook_url":     "webhook.url",
	"webhook_token":   "webhook.token",
	"webhook_timeout": "webhook.timeout",

	"metrics_address": "metrics.address",
}

// sliceConfigPaths arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"kafka.brokers",
	"kafka.consumer_topics",
}

// Load layers defaults, the optional config file and the environment, then validates
// the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		if err := k.Set(path, splitAndTrim(raw)); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
