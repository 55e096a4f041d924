// Package testhelpers exposes helpers for end-to-end suites that drive the
// recommendation consumer through a real Kafka broker.
package testhelpers

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"

	"example.com/recommender/internal/consumer"
	"example.com/recommender/internal/domain"
	"example.com/recommender/internal/events"
	"example.com/recommender/internal/publish"
)

// RecommendationConsumerHandle manages the lifecycle of a running recommendation consumer.
type RecommendationConsumerHandle struct {
	cancel context.CancelFunc
	reader *kafka.Reader
	done   chan struct{}
}

// StartRecommendationConsumer consumes profile events from topic and publishes the
// recommendations through publisher until Stop is called.
func StartRecommendationConsumer(ctx context.Context, brokers []string, topic string, service *domain.Service, publisher publish.Publisher) (*RecommendationConsumerHandle, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("missing brokers")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        fmt.Sprintf("recommendation-integration-%d", time.Now().UnixNano()),
		Topic:          topic,
		StartOffset:    kafka.FirstOffset,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
	})

	procCtx, cancel := context.WithCancel(ctx)
	h := &RecommendationConsumerHandle{cancel: cancel, reader: reader, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		_ = consumer.NewProcessor(reader, consumer.NewRecommendationHandler(service, publisher)).Run(procCtx)
	}()
	return h, nil
}

// Stop terminates the running consumer.
func (h *RecommendationConsumerHandle) Stop() error {
	h.cancel()
	<-h.done
	return h.reader.Close()
}

// PublishProfile writes a profile.submitted event keyed by the user id.
func PublishProfile(ctx context.Context, brokers []string, topic string, evt events.ProfileSubmitted) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	defer writer.Close()
	return writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(evt.UserID),
		Value:   payload,
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(events.TypeProfileSubmitted)}},
	})
}

// NextRecommendation reads the next recommendation.generated event for userID from
// topic, skipping events for other users.
func NextRecommendation(ctx context.Context, brokers []string, topic, userID string) (events.RecommendationGenerated, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	defer reader.Close()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			return events.RecommendationGenerated{}, err
		}
		if string(msg.Key) != userID {
			continue
		}
		var evt events.RecommendationGenerated
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			return events.RecommendationGenerated{}, fmt.Errorf("decode %s: %w", events.TypeRecommendationGenerated, err)
		}
		return evt, nil
	}
}
