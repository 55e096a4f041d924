package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"example.com/recommender/internal/domain"
	"example.com/recommender/internal/events"
	"example.com/recommender/internal/testsupport"
)

type capturePublisher struct {
	events []events.RecommendationGenerated
	err    error
}

func (c *capturePublisher) PublishRecommendation(_ context.Context, evt events.RecommendationGenerated) error {
	c.events = append(c.events, evt)
	return c.err
}

func (c *capturePublisher) Close() error { return nil }

func newHandler(t *testing.T, pub *capturePublisher) Handler {
	t.Helper()
	service, err := domain.NewService(testsupport.Schema(t), testsupport.Classifier(t), testsupport.ExerciseBase(), testsupport.DietBase(), domain.DefaultOptions())
	require.NoError(t, err)
	return NewRecommendationHandler(service, pub)
}

func profileMessage(t *testing.T, profile string) Message {
	t.Helper()
	payload, err := json.Marshal(events.ProfileSubmitted{
		EventID:     "evt-1",
		TenantID:    "tenant",
		UserID:      "user",
		SubmittedAt: time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC),
		Profile:     json.RawMessage(profile),
	})
	require.NoError(t, err)
	return Message{
		Topic:   "profile_events",
		Headers: map[string]string{"event_type": events.TypeProfileSubmitted},
		Payload: payload,
	}
}

func TestRecommendationHandlerPublishesEvent(t *testing.T) {
	pub := &capturePublisher{}
	handler := newHandler(t, pub)

	require.NoError(t, handler.Handle(context.Background(), profileMessage(t, testsupport.ProfileJSON)))
	require.Len(t, pub.events, 1)

	evt := pub.events[0]
	require.Equal(t, "user", evt.UserID)
	require.Equal(t, "tenant", evt.TenantID)
	require.Equal(t, "evt-1", evt.RequestID)
	require.InDelta(t, 24.49, evt.BMI, 1e-9)
	require.Len(t, evt.Exercises, 4)
	require.Equal(t, "Bench Press", evt.Exercises[0].Name)
	require.True(t, evt.DietFound)
}

func TestRecommendationHandlerStripsSchemaRegistryPrefix(t *testing.T) {
	pub := &capturePublisher{}
	handler := newHandler(t, pub)

	msg := profileMessage(t, testsupport.ProfileJSON)
	msg.Payload = append([]byte{0x00, 0x00, 0x00, 0x00, 0x07}, msg.Payload...)
	require.NoError(t, handler.Handle(context.Background(), msg))
	require.Len(t, pub.events, 1)
}

func TestRecommendationHandlerDropsInvalidProfile(t *testing.T) {
	pub := &capturePublisher{}
	handler := newHandler(t, pub)

	require.NoError(t, handler.Handle(context.Background(), profileMessage(t, `{"Gender":"Male"}`)))
	require.Empty(t, pub.events)
}

func TestRecommendationHandlerIgnoresOtherEvents(t *testing.T) {
	pub := &capturePublisher{}
	handler := newHandler(t, pub)

	msg := profileMessage(t, testsupport.ProfileJSON)
	msg.Headers["event_type"] = "activity.created"
	require.NoError(t, handler.Handle(context.Background(), msg))
	require.Empty(t, pub.events)
}

func TestRecommendationHandlerReportsFailures(t *testing.T) {
	handler := newHandler(t, &capturePublisher{err: errors.New("broker down")})
	require.ErrorContains(t, handler.Handle(context.Background(), profileMessage(t, testsupport.ProfileJSON)), "broker down")

	msg := Message{Headers: map[string]string{"event_type": events.TypeProfileSubmitted}, Payload: []byte("{")}
	require.Error(t, handler.Handle(context.Background(), msg))
}
