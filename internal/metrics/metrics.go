package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "staybook"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		},
		[]string{"endpoint", "code"},
	)

	reviewSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_submissions_total",
			Help:      "Review submissions by outcome.",
		},
		[]string{"outcome"},
	)

	submittedRatings = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "review_rating",
			Help:      "Star ratings of accepted reviews.",
			Buckets:   []float64{1, 2, 3, 4, 5},
		},
	)

	notificationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Review notifications dropped after exhausting retries.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, reviewSubmissions, submittedRatings, notificationFailures)
	})
}

func IncHTTP(endpoint, code string) {
	httpRequests.WithLabelValues(endpoint, code).Inc()
}

// IncReviewSubmission counts a submission attempt; outcome is "created" or
// the error kind that ended it.
func IncReviewSubmission(outcome string) {
	reviewSubmissions.WithLabelValues(outcome).Inc()
}

func ObserveRating(stars int) {
	submittedRatings.Observe(float64(stars))
}

func IncNotificationFailure() {
	notificationFailures.Inc()
}
