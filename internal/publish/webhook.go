package publish

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"example.com/recommender/internal/events"
	"example.com/recommender/internal/observability"
)

// WebhookPublisher POSTs each event as JSON to an HTTP endpoint.
type WebhookPublisher struct {
	client *http.Client
	url    string
	token  string
}

// NewWebhookPublisher constructs a WebhookPublisher.
func NewWebhookPublisher(endpoint, token string, timeout time.Duration) *WebhookPublisher {
	return &WebhookPublisher{
		client: &http.Client{Timeout: timeout},
		url:    strings.TrimRight(endpoint, "/"),
		token:  token,
	}
}

// PublishRecommendation implements Publisher.
func (h *WebhookPublisher) PublishRecommendation(ctx context.Context, evt events.RecommendationGenerated) (err error) {
	defer func() { observability.RecordPublish(events.TypeRecommendationGenerated, err) }()

	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Type", events.TypeRecommendationGenerated)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &DeliveryError{Status: resp.StatusCode}
	}
	return nil
}

// Close performs no action.
func (h *WebhookPublisher) Close() error { return nil }

// DeliveryError represents a non-successful webhook response.
type DeliveryError struct {
	Status int
}

func (e *DeliveryError) Error() string {
	return "webhook delivery failed with status " + http.StatusText(e.Status)
}

// Fanout publishes to every configured publisher and joins their errors.
type Fanout []Publisher

// PublishRecommendation implements Publisher.
func (f Fanout) PublishRecommendation(ctx context.Context, evt events.RecommendationGenerated) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishRecommendation(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close implements Publisher.
func (f Fanout) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
