package publish

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/require"

	"example.com/recommender/internal/domain"
	"example.com/recommender/internal/events"
	"example.com/recommender/internal/knowledge"
)

type stubWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (s *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msgs...)
	return nil
}

func (s *stubWriter) Close() error {
	s.closed = true
	return nil
}

func sampleEvent() events.RecommendationGenerated {
	calories := 600.0
	rec := &domain.Recommendation{
		BMI: 24.49,
		Exercises: []domain.ExerciseRecommendation{
			{ExerciseName: "Squats", Confidence: 0.6, Match: knowledge.MatchExact},
			{ExerciseName: "Plank", Confidence: 0.4, Match: knowledge.MatchNone},
		},
		Diet: domain.DietSuggestion{DietType: "Balanced", MealType: "Lunch", Found: true, Calories: &calories},
	}
	return NewRecommendationEvent(Meta{RequestID: "req-1", UserID: "user-1"}, rec)
}

func TestNewRecommendationEvent(t *testing.T) {
	evt := sampleEvent()
	require.NotEmpty(t, evt.EventID)
	require.Equal(t, "req-1", evt.RequestID)
	require.Equal(t, []events.RankedExercise{
		{Name: "Squats", Confidence: 0.6, Match: "exact"},
		{Name: "Plank", Confidence: 0.4, Match: "not_found"},
	}, evt.Exercises)
	require.True(t, evt.DietFound)
	require.False(t, evt.GeneratedAt.IsZero())
}

func TestKafkaPublisherWritesEvent(t *testing.T) {
	writer := &stubWriter{}
	pub := NewKafkaPublisherWithWriter(writer, time.Second, DefaultBreakerConfig())

	evt := sampleEvent()
	require.NoError(t, pub.PublishRecommendation(context.Background(), evt))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	require.Equal(t, "user-1", string(msg.Key))
	require.Equal(t, "event_type", msg.Headers[0].Key)
	require.Equal(t, events.TypeRecommendationGenerated, string(msg.Headers[0].Value))

	var decoded events.RecommendationGenerated
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	require.Equal(t, evt.EventID, decoded.EventID)
	require.InDelta(t, 24.49, decoded.BMI, 1e-9)

	require.NoError(t, pub.Close())
	require.True(t, writer.closed)
}

func TestKafkaPublisherOpensBreaker(t *testing.T) {
	writer := &stubWriter{err: errors.New("broker down")}
	pub := NewKafkaPublisherWithWriter(writer, time.Second, BreakerConfig{MaxRequests: 1, Timeout: time.Minute, FailureThreshold: 2})

	for i := 0; i < 2; i++ {
		require.ErrorContains(t, pub.PublishRecommendation(context.Background(), sampleEvent()), "broker down")
	}
	require.Equal(t, gobreaker.StateOpen, pub.State())

	err := pub.PublishRecommendation(context.Background(), sampleEvent())
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestWebhookPublisher(t *testing.T) {
	var (
		gotAuth string
		gotType string
		body    []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("X-Event-Type")
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	pub := NewWebhookPublisher(srv.URL+"/", "secret", time.Second)
	require.NoError(t, pub.PublishRecommendation(context.Background(), sampleEvent()))
	require.Equal(t, "Bearer secret", gotAuth)
	require.Equal(t, events.TypeRecommendationGenerated, gotType)
	require.Contains(t, string(body), `"user_id":"user-1"`)
}

func TestWebhookPublisherFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookPublisher(srv.URL, "", time.Second).PublishRecommendation(context.Background(), sampleEvent())
	var delivery *DeliveryError
	require.ErrorAs(t, err, &delivery)
	require.Equal(t, http.StatusBadGateway, delivery.Status)
}

func TestFanoutJoinsErrors(t *testing.T) {
	ok := &stubWriter{}
	failing := &stubWriter{err: errors.New("boom")}
	fan := Fanout{
		NoopPublisher{},
		NewKafkaPublisherWithWriter(ok, time.Second, DefaultBreakerConfig()),
		NewKafkaPublisherWithWriter(failing, time.Second, DefaultBreakerConfig()),
	}

	err := fan.PublishRecommendation(context.Background(), sampleEvent())
	require.ErrorContains(t, err, "boom")
	require.Len(t, ok.messages, 1)
	require.NoError(t, fan.Close())
}
