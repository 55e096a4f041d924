package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	predictionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recommender",
		Subsystem: "predict",
		Name:      "requests_total",
		Help:      "Recommendation requests grouped by outcome (ok, invalid, error).",
	}, []string{"outcome"})

	predictionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "recommender",
		Subsystem: "predict",
		Name:      "duration_seconds",
		Help:      "Time spent encoding, scoring and enriching a single recommendation request.",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
	})

	lookupCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recommender",
		Subsystem: "knowledge",
		Name:      "lookups_total",
		Help:      "Knowledge base lookups grouped by table and match kind.",
	}, []string{"table", "match"})

	knowledgeRowsGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "recommender",
		Subsystem: "knowledge",
		Name:      "rows",
		Help:      "Rows loaded per knowledge base table.",
	}, []string{"table"})

	modelClassesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "recommender",
		Subsystem: "model",
		Name:      "classes",
		Help:      "Number of class labels the loaded classifier scores.",
	})

	artifactsLoadedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "recommender",
		Subsystem: "model",
		Name:      "last_artifact_load_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful artifact load.",
	})

	eventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recommender",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Recommendation events handed to the broker, grouped by result.",
	}, []string{"event_type", "result"})
)

func init() {
	prometheus.MustRegister(
		predictionCounter,
		predictionLatency,
		lookupCounter,
		knowledgeRowsGauge,
		modelClassesGauge,
		artifactsLoadedGauge,
		eventsPublished,
	)
}

// RecordPrediction tracks one request outcome and its duration.
func RecordPrediction(outcome string, elapsed time.Duration) {
	predictionCounter.WithLabelValues(outcome).Inc()
	predictionLatency.Observe(elapsed.Seconds())
}

// RecordLookup tracks a knowledge base lookup result.
func RecordLookup(table, match string) {
	lookupCounter.WithLabelValues(table, match).Inc()
}

// RecordArtifacts publishes the sizes of the loaded artifacts and the load watermark.
func RecordArtifacts(classes, exerciseRows, dietRows int, ts time.Time) {
	modelClassesGauge.Set(float64(classes))
	knowledgeRowsGauge.WithLabelValues("exercise").Set(float64(exerciseRows))
	knowledgeRowsGauge.WithLabelValues("diet").Set(float64(dietRows))
	if ts.IsZero() {
		return
	}
	artifactsLoadedGauge.Set(float64(ts.Unix()))
}

// RecordPublish tracks an event publish attempt.
func RecordPublish(eventType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	eventsPublished.WithLabelValues(eventType, result).Inc()
}
