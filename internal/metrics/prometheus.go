package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "student_questions_submissions_total",
			Help: "Total response submissions",
		},
		[]string{"status"},
	)

	ListingsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "student_questions_listings_total",
			Help: "Total session listings served",
		},
	)

	QueryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "student_questions_query_total",
			Help: "Total summarization queries by outcome",
		},
		[]string{"status"},
	)

	QueryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "student_questions_query_duration_seconds",
			Help:    "Summarization query duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	SummarizerTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "student_questions_summarizer_tokens_used",
			Help: "Total summarizer tokens used",
		},
		[]string{"type"},
	)

	MalformedRecordsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "student_questions_malformed_records_skipped_total",
			Help: "Stored records skipped during listing because they could not be read",
		},
	)

	WatchConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "student_questions_watch_connections",
			Help: "Open websocket submission-feed connections",
		},
	)
)

func Init() {
	prometheus.MustRegister(SubmissionsTotal)
	prometheus.MustRegister(ListingsTotal)
	prometheus.MustRegister(QueryTotal)
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(SummarizerTokensUsed)
	prometheus.MustRegister(MalformedRecordsSkipped)
	prometheus.MustRegister(WatchConnections)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
