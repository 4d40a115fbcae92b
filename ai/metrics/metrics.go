// Package metrics exposes Prometheus collectors for the AI pipeline. All
// collectors register on the default registry and are served by the
// server's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SelectionScans counts full context-selection scans (single-turn
	// short-circuits excluded).
	SelectionScans = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cba",
		Subsystem: "selection",
		Name:      "scans_total",
		Help:      "Number of context selection scans over turn history.",
	})

	// CandidatesSkipped counts history turns dropped from a scan, by stage.
	CandidatesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cba",
		Subsystem: "selection",
		Name:      "candidates_skipped_total",
		Help:      "Number of candidate turns skipped during selection, by failure stage.",
	}, []string{"stage"})

	// SelectionScore observes per-candidate relevance probabilities.
	SelectionScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cba",
		Subsystem: "selection",
		Name:      "score",
		Help:      "Sigmoid relevance probability per scored candidate.",
		Buckets:   prometheus.LinearBuckets(0.05, 0.05, 19),
	})

	// LLMRequestDuration observes LLM completion latency by model.
	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cba",
		Subsystem: "llm",
		Name:      "request_duration_seconds",
		Help:      "LLM completion call latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"model"})

	// ToolRunDuration observes agent tool execution latency by tool name.
	ToolRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cba",
		Subsystem: "agent",
		Name:      "tool_run_duration_seconds",
		Help:      "Agent tool execution latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"tool"})

	// TurnsCompleted counts fully persisted conversation turns.
	TurnsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cba",
		Subsystem: "agent",
		Name:      "turns_completed_total",
		Help:      "Number of conversation turns completed and persisted.",
	})
)
