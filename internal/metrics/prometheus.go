package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_genie_query_duration_seconds",
			Help:    "Query processing duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"intent"},
	)

	QueryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_genie_query_total",
			Help: "Total number of queries processed",
		},
		[]string{"intent", "status"},
	)

	IntentConfidence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "portal_genie_intent_confidence",
			Help:    "Winning intent confidence per query",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	BoostHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_genie_boost_hits_total",
			Help: "Total reports promoted by the lexical boost",
		},
	)

	MatchCount = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "portal_genie_match_count",
			Help:    "Number of report matches per search",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
	)

	FeedbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_genie_feedback_total",
			Help: "Total feedback submissions",
		},
		[]string{"sentiment"},
	)

	POSUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_genie_pos_updates_total",
			Help: "Total POS price update attempts",
		},
		[]string{"status"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_genie_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_genie_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)
)

func Init() {
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(QueryTotal)
	prometheus.MustRegister(IntentConfidence)
	prometheus.MustRegister(BoostHits)
	prometheus.MustRegister(MatchCount)
	prometheus.MustRegister(FeedbackTotal)
	prometheus.MustRegister(POSUpdates)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
