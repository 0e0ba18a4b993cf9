// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values used across the collectors.
const (
	PathText  = "text"
	PathAudio = "audio"

	VariantPrimary  = "primary"
	VariantFallback = "fallback"

	ResultAnswered    = "answered"
	ResultEmpty       = "empty"
	ResultPlaceholder = "placeholder"
)

var (
	ProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voicebot",
			Name:      "provider_calls_total",
			Help:      "Provider calls by request path, prompt variant and outcome (ok, error).",
		},
		[]string{"path", "variant", "outcome"},
	)

	Escalations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voicebot",
			Name:      "escalations_total",
			Help:      "Primary attempts escalated to the fallback prompt, by reason (empty, truncated).",
		},
		[]string{"path", "reason"},
	)

	Replies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voicebot",
			Name:      "replies_total",
			Help:      "Replies returned to callers by path and result.",
		},
		[]string{"path", "result"},
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "voicebot",
			Name:      "turn_duration_seconds",
			Help:      "Time spent answering one user turn, provider calls included.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"path"},
	)
)
