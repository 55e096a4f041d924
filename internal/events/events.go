// Package events defines the payloads exchanged with other services over Kafka.
package events

import (
	"time"

	"github.com/goccy/go-json"
)

// Event type names carried in the event_type header.
const (
	TypeProfileSubmitted        = "profile.submitted"
	TypeRecommendationGenerated = "recommendation.generated"
)

// ProfileSubmitted is emitted by the profile service when a user saves their fitness
// attributes. Profile holds the same JSON object the /predict endpoint accepts.
type ProfileSubmitted struct {
	EventID     string          `json:"event_id"`
	TenantID    string          `json:"tenant_id,omitempty"`
	UserID      string          `json:"user_id"`
	SubmittedAt time.Time       `json:"submitted_at"`
	Profile     json.RawMessage `json:"profile"`
}

// RankedExercise is one entry of a generated recommendation.
type RankedExercise struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Match      string  `json:"match"`
}

// RecommendationGenerated is emitted after every successful recommendation.
type RecommendationGenerated struct {
	EventID     string           `json:"event_id"`
	RequestID   string           `json:"request_id,omitempty"`
	TenantID    string           `json:"tenant_id,omitempty"`
	UserID      string           `json:"user_id,omitempty"`
	BMI         float64          `json:"bmi"`
	Exercises   []RankedExercise `json:"exercises"`
	DietType    string           `json:"diet_type"`
	MealType    string           `json:"meal_type"`
	DietFound   bool             `json:"diet_found"`
	GeneratedAt time.Time        `json:"generated_at"`
}
