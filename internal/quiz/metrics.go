package quiz

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quizdash",
		Name:      "quiz_submissions_total",
		Help:      "Number of quiz submissions accepted and persisted.",
	})

	submissionScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "quizdash",
		Name:      "quiz_submission_score",
		Help:      "Distribution of scores across accepted submissions.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	})
)
