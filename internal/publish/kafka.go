package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	gobreaker "github.com/sony/gobreaker/v2"

	"example.com/recommender/internal/events"
	"example.com/recommender/internal/logging"
	"example.com/recommender/internal/observability"
)

// Writer describes the kafka.Writer functions the publisher uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// BreakerConfig tunes the circuit breaker guarding the broker.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultBreakerConfig returns production defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          15 * time.Second,
		FailureThreshold: 5,
	}
}

// KafkaPublisher writes events as JSON to a single topic. After repeated broker
// failures the breaker opens and publishes fail fast until it half-opens again.
type KafkaPublisher struct {
	writer  Writer
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewKafkaPublisher creates a KafkaPublisher for topic.
func NewKafkaPublisher(brokers []string, topic string, timeout time.Duration) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return NewKafkaPublisherWithWriter(writer, timeout, DefaultBreakerConfig())
}

// NewKafkaPublisherWithWriter wires a custom writer.
func NewKafkaPublisherWithWriter(writer Writer, timeout time.Duration, cfg BreakerConfig) *KafkaPublisher {
	log := logging.WithComponent("publisher")
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "kafka-publisher",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	return &KafkaPublisher{writer: writer, timeout: timeout, breaker: breaker}
}

// PublishRecommendation implements Publisher. Events are keyed by user so one user's
// recommendations stay ordered.
func (p *KafkaPublisher) PublishRecommendation(ctx context.Context, evt events.RecommendationGenerated) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", events.TypeRecommendationGenerated, err)
	}
	key := evt.UserID
	if key == "" {
		key = evt.EventID
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  evt.GeneratedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(events.TypeRecommendationGenerated)},
			{Key: "event_id", Value: []byte(evt.EventID)},
		},
	}

	_, err = p.breaker.Execute(func() (struct{}, error) {
		writeCtx := ctx
		if p.timeout > 0 {
			var cancel context.CancelFunc
			writeCtx, cancel = context.WithTimeout(ctx, p.timeout)
			defer cancel()
		}
		return struct{}{}, p.writer.WriteMessages(writeCtx, msg)
	})
	observability.RecordPublish(events.TypeRecommendationGenerated, err)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("broker unavailable: %w", err)
	}
	return err
}

// State exposes the breaker state.
func (p *KafkaPublisher) State() gobreaker.State {
	return p.breaker.State()
}

// Close releases the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
