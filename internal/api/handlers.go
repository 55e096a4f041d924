// Package api exposes HTTP handlers for the recommendation service.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"example.com/recommender/internal/auth"
	"example.com/recommender/internal/domain"
	"example.com/recommender/internal/features"
	"example.com/recommender/internal/logging"
	"example.com/recommender/internal/publish"
)

const maxBodyBytes = 1 << 20

// Handler handles HTTP interactions.
type Handler struct {
	service   *domain.Service
	publisher publish.Publisher
	inflight  sync.WaitGroup
}

// NewHandler constructs Handler. A nil publisher drops events.
func NewHandler(service *domain.Service, publisher publish.Publisher) *Handler {
	if publisher == nil {
		publisher = publish.NoopPublisher{}
	}
	return &Handler{service: service, publisher: publisher}
}

// Wait blocks until every event publish started by a request has returned.
func (h *Handler) Wait() { h.inflight.Wait() }

// RegisterRoutes sets up routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/predict", h.predict)
	mux.HandleFunc("/v1/predict", h.predict)
	mux.HandleFunc("/health", h.health)
	mux.HandleFunc("/healthz", healthz)
}

// healthz returns an OK response for readiness probes.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type healthResponse struct {
	Status         string    `json:"status"`
	ModelLoaded    bool      `json:"model_loaded"`
	ModelClasses   int       `json:"model_classes"`
	FeatureColumns int       `json:"feature_columns"`
	ExerciseKBSize int       `json:"exercise_kb_size"`
	DietKBSize     int       `json:"diet_kb_size"`
	LoadedAt       time.Time `json:"loaded_at"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	st := h.service.Status()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:         "healthy",
		ModelLoaded:    st.ModelLoaded,
		ModelClasses:   st.ModelClasses,
		FeatureColumns: st.FeatureColumns,
		ExerciseKBSize: st.ExerciseKBSize,
		DietKBSize:     st.DietKBSize,
		LoadedAt:       st.LoadedAt,
	})
}

type predictResponse struct {
	Success bool `json:"success"`
	*domain.Recommendation
}

func (h *Handler) predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, features.Invalid("request body", "unreadable or too large").Error())
		return
	}

	req, err := domain.DecodeProfile(body)
	if err == nil {
		var rec *domain.Recommendation
		rec, err = h.service.Recommend(r.Context(), req)
		if err == nil {
			h.publish(r, rec)
			writeJSON(w, http.StatusOK, predictResponse{Success: true, Recommendation: rec})
			return
		}
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Error())
		return
	}
	logging.Ctx(r.Context()).Error().Err(err).Msg("recommendation failed")
	writeError(w, http.StatusInternalServerError, "An error occurred: "+err.Error())
}

// publish runs after the response is written and never fails the request;
// delivery problems are only logged.
func (h *Handler) publish(r *http.Request, rec *domain.Recommendation) {
	ctx := context.WithoutCancel(r.Context())
	meta := publish.Meta{RequestID: logging.RequestIDFromContext(ctx)}
	if claims, ok := auth.FromContext(ctx); ok {
		meta.UserID = claims.Subject
		meta.TenantID = claims.TenantID
	}
	event := publish.NewRecommendationEvent(meta, rec)

	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		if err := h.publisher.PublishRecommendation(ctx, event); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("publish recommendation event")
		}
	}()
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error().Err(err).Msg("encode response")
	}
}
