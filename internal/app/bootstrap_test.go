package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/recommender/internal/config"
	"example.com/recommender/internal/knowledge"
	"example.com/recommender/internal/publish"
	"example.com/recommender/internal/testsupport"
)

func TestOpenKnowledgeCSV(t *testing.T) {
	dir := t.TempDir()
	exercisePath := filepath.Join(dir, "knowledge_base.csv")
	dietPath := filepath.Join(dir, "diet_knowledge_base.csv")
	writeCSV(t, exercisePath, func(f *os.File) error { return knowledge.WriteExerciseCSV(f, testsupport.ExerciseRows()) })
	writeCSV(t, dietPath, func(f *os.File) error { return knowledge.WriteDietCSV(f, testsupport.DietRows()) })

	src, closeSrc, err := OpenKnowledge(context.Background(), config.KnowledgeConfig{
		Source:       config.SourceCSV,
		ExercisePath: exercisePath,
		DietPath:     dietPath,
	})
	require.NoError(t, err)
	defer closeSrc()

	exercises, diets, err := knowledge.Load(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, len(testsupport.ExerciseRows()), exercises.Len())
	require.Equal(t, len(testsupport.DietRows()), diets.Len())
}

func TestOpenKnowledgeSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge.db")
	store, err := knowledge.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), testsupport.ExerciseRows(), testsupport.DietRows()))
	require.NoError(t, store.Close())

	src, closeSrc, err := OpenKnowledge(context.Background(), config.KnowledgeConfig{Source: config.SourceSQLite, SQLitePath: path})
	require.NoError(t, err)
	defer closeSrc()

	exercises, _, err := knowledge.Load(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, len(testsupport.ExerciseRows()), exercises.Len())
}

func TestOpenKnowledgeRejectsUnknownSource(t *testing.T) {
	_, _, err := OpenKnowledge(context.Background(), config.KnowledgeConfig{Source: "redis"})
	require.ErrorContains(t, err, `unknown knowledge source "redis"`)
}

func TestBuildServiceReportsMissingArtifacts(t *testing.T) {
	cfg := &config.Config{Model: config.ModelConfig{TrainingColumnsPath: filepath.Join(t.TempDir(), "missing.json")}}
	_, err := BuildService(context.Background(), cfg)
	require.Error(t, err)
}

func TestBuildPublisherSelection(t *testing.T) {
	cfg := &config.Config{}
	require.IsType(t, publish.NoopPublisher{}, BuildPublisher(cfg))

	cfg.Webhook = config.WebhookConfig{URL: "http://localhost:9/hook", Timeout: time.Second}
	require.IsType(t, &publish.WebhookPublisher{}, BuildPublisher(cfg))

	cfg.Kafka = config.KafkaConfig{Brokers: []string{"localhost:9092"}, RecommendationTopic: "recommendation_events", PublishTimeout: time.Second}
	pub := BuildPublisher(cfg)
	defer pub.Close()
	fanout, ok := pub.(publish.Fanout)
	require.True(t, ok)
	require.Len(t, fanout, 2)
}

func writeCSV(t *testing.T, path string, write func(*os.File) error) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, write(f))
	require.NoError(t, f.Close())
}
