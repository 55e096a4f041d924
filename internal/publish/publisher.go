// Package publish hands recommendation events to downstream consumers.
package publish

import (
	"context"
	"time"

	"github.com/google/uuid"

	"example.com/recommender/internal/domain"
	"example.com/recommender/internal/events"
)

// Publisher delivers recommendation events.
type Publisher interface {
	PublishRecommendation(ctx context.Context, evt events.RecommendationGenerated) error
	Close() error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

// PublishRecommendation performs no action.
func (NoopPublisher) PublishRecommendation(context.Context, events.RecommendationGenerated) error {
	return nil
}

// Close performs no action.
func (NoopPublisher) Close() error { return nil }

// Meta identifies who a recommendation was generated for.
type Meta struct {
	RequestID string
	TenantID  string
	UserID    string
}

// NewRecommendationEvent summarises rec for publication.
func NewRecommendationEvent(meta Meta, rec *domain.Recommendation) events.RecommendationGenerated {
	ranked := make([]events.RankedExercise, 0, len(rec.Exercises))
	for _, ex := range rec.Exercises {
		ranked = append(ranked, events.RankedExercise{
			Name:       ex.ExerciseName,
			Confidence: ex.Confidence,
			Match:      ex.Match.String(),
		})
	}
	return events.RecommendationGenerated{
		EventID:     uuid.NewString(),
		RequestID:   meta.RequestID,
		TenantID:    meta.TenantID,
		UserID:      meta.UserID,
		BMI:         rec.BMI,
		Exercises:   ranked,
		DietType:    rec.Diet.DietType,
		MealType:    rec.Diet.MealType,
		DietFound:   rec.Diet.Found,
		GeneratedAt: time.Now().UTC(),
	}
}
