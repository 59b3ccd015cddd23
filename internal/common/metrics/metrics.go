// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_questions_total",
			Help: "Total number of questions processed, by routing decision",
		},
		[]string{"decision"},
	)

	QuestionsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_questions_rejected_total",
			Help: "Total number of questions rejected before dispatch",
		},
	)

	BackendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_backend_requests_total",
			Help: "Total number of backend invocations, by backend and outcome",
		},
		[]string{"backend", "status"},
	)

	BackendLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "assistant_backend_latency_seconds",
			Help: "Latency of backend invocations in seconds",
		},
		[]string{"backend"},
	)

	AnswersDegraded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_answers_degraded_total",
			Help: "Total number of answers produced with degraded coverage",
		},
	)
)
