// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviecatalog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviecatalog_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moviecatalog_http_active_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviecatalog_rate_limit_rejections_total",
			Help: "Requests rejected by the throttle",
		},
		[]string{"scope"}, // "anon", "user"
	)

	// Ratings
	RatingWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviecatalog_rating_writes_total",
			Help: "Rating upserts and deletes",
		},
		[]string{"op"}, // "upsert", "delete"
	)

	AggregateRecomputes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moviecatalog_aggregate_recomputes_total",
			Help: "Movie rating aggregate recomputations",
		},
	)

	ReviewsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moviecatalog_reviews_created_total",
			Help: "Reviews created",
		},
	)

	FavoriteToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviecatalog_favorite_toggles_total",
			Help: "Favorite toggles by resulting state",
		},
		[]string{"status"},
	)

	// Cache
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviecatalog_cache_hits_total",
			Help: "Cache hits",
		},
		[]string{"kind"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviecatalog_cache_misses_total",
			Help: "Cache misses",
		},
		[]string{"kind"},
	)
)

func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

func RecordRatingWrite(op string) {
	RatingWrites.WithLabelValues(op).Inc()
}

func RecordCache(kind string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(kind).Inc()
	} else {
		CacheMisses.WithLabelValues(kind).Inc()
	}
}
