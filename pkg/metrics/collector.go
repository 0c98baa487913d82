// Package metrics exposes Prometheus collectors for the bot.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zgojin/tempban-bot/internal/tempban"
)

var (
	admissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_admissions_total",
			Help: "Inbound requests checked against the ban registry, labeled by outcome",
		},
		[]string{"outcome"},
	)
	bansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_bans_total",
			Help: "Bans applied to the registry, labeled by path",
		},
		[]string{"path"},
	)
	updatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Handled Telegram updates labeled by handler and status",
		},
		[]string{"handler", "status"},
	)
	handlerDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_handler_duration_seconds",
			Help:    "Duration of update handlers in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler"},
	)
	llmRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Duration of language-model backend requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)
)

func init() {
	tempban.RegisterBanRecorder(RecordBan)
}

// RecordAdmission counts one admission decision.
func RecordAdmission(allowed bool) {
	outcome := "allowed"
	if !allowed {
		outcome = "rejected"
	}
	admissionsTotal.WithLabelValues(outcome).Inc()
}

// RecordBan counts one applied ban by path (admin, self, retaliation, auto).
func RecordBan(path string) {
	if path == "" {
		path = "unknown"
	}
	bansTotal.WithLabelValues(path).Inc()
}

// RecordUpdate counts a handled update and records its duration.
func RecordUpdate(handler, status string, duration time.Duration) {
	if handler == "" {
		handler = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	updatesTotal.WithLabelValues(handler, status).Inc()
	handlerDurationSeconds.WithLabelValues(handler).Observe(duration.Seconds())
}

// RecordLLMRequest records one backend round trip.
func RecordLLMRequest(status string, duration time.Duration) {
	if status == "" {
		status = "unknown"
	}
	llmRequestDurationSeconds.WithLabelValues(status).Observe(duration.Seconds())
}
