package fetcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedkiosk_fetch_requests_total",
		Help: "The total number of feed fetches started",
	}, []string{"source"})

	fetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedkiosk_fetch_errors_total",
		Help: "The total number of failed feed fetches",
	}, []string{"source", "kind"})

	fetchInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "feedkiosk_fetch_in_flight",
		Help: "The current number of feed fetches in flight",
	})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feedkiosk_fetch_duration_seconds",
		Help:    "Duration of feed fetches, from request to parsed document",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // Start at 50ms, double each bucket, 10 buckets
	})

	fetchArticles = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feedkiosk_fetch_articles",
		Help:    "Number of articles in successfully parsed feeds",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})
)
