package consumer

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"example.com/recommender/internal/domain"
	"example.com/recommender/internal/events"
	"example.com/recommender/internal/logging"
	"example.com/recommender/internal/publish"
)

// RecommendationHandler scores profile.submitted events.
type RecommendationHandler struct {
	service   *domain.Service
	publisher publish.Publisher
}

// NewRecommendationHandler constructs a handler backed by the provided service.
func NewRecommendationHandler(service *domain.Service, publisher publish.Publisher) Handler {
	if publisher == nil {
		publisher = publish.NoopPublisher{}
	}
	return &RecommendationHandler{service: service, publisher: publisher}
}

// Handle scores the submitted profile and publishes the recommendation. Profiles that
// fail validation are dropped.
func (h *RecommendationHandler) Handle(ctx context.Context, msg Message) error {
	if msg.Headers["event_type"] != events.TypeProfileSubmitted {
		RecordProcessed(msg, "skipped")
		return nil
	}

	payload := msg.Payload
	// Confluent Schema Registry wire format: magic byte plus 4-byte schema id.
	if len(payload) >= 5 && payload[0] == 0x00 {
		payload = payload[5:]
	}
	var evt events.ProfileSubmitted
	if err := json.Unmarshal(payload, &evt); err != nil {
		RecordProcessed(msg, "invalid")
		return fmt.Errorf("decode %s: %w", events.TypeProfileSubmitted, err)
	}

	log := logging.WithComponent("consumer").With().Str("event_id", evt.EventID).Str("user_id", evt.UserID).Logger()

	req, err := domain.DecodeProfile(evt.Profile)
	if err == nil {
		var rec *domain.Recommendation
		rec, err = h.service.Recommend(ctx, req)
		if err == nil {
			meta := publish.Meta{RequestID: evt.EventID, TenantID: evt.TenantID, UserID: evt.UserID}
			if err := h.publisher.PublishRecommendation(ctx, publish.NewRecommendationEvent(meta, rec)); err != nil {
				RecordProcessed(msg, "error")
				return fmt.Errorf("publish recommendation: %w", err)
			}
			RecordProcessed(msg, "ok")
			return nil
		}
	}

	if domain.IsValidation(err) {
		log.Warn().Err(err).Msg("dropping invalid profile")
		RecordProcessed(msg, "invalid")
		return nil
	}
	RecordProcessed(msg, "error")
	return err
}
