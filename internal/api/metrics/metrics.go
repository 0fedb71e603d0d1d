// Package metrics defines and registers all custom Prometheus metrics of the
// marketplace API. It is the single source of truth for metric names, labels
// and help strings.
//
// Metrics are registered with the default registry through promauto when the
// package is first imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Workflow metrics ──────────────────────────────────────────────────────────

// ProjectsCreatedTotal counts created projects.
// Label:
//   - result: "created" or "replayed" (Idempotency-Key hit)
var ProjectsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "projects_created_total",
		Help:      "Total number of project creations, by result.",
	},
	[]string{"result"},
)

// ProposalsSubmittedTotal counts proposal submissions.
// Label:
//   - result: "created" or "updated"
var ProposalsSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "proposals_submitted_total",
		Help:      "Total number of proposal submissions, by result.",
	},
	[]string{"result"},
)

// ProposalTransitionsTotal counts proposal status changes made through the API.
// Labels:
//   - status: the new proposal status (e.g. "accepted")
//   - outcome: "ok" or "error"
var ProposalTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "proposal_transitions_total",
		Help:      "Total number of proposal status transitions requested.",
	},
	[]string{"status", "outcome"},
)

// AcceptancesReconciledTotal counts acceptance intents finished by the reconciler.
var AcceptancesReconciledTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "acceptances_reconciled_total",
		Help:      "Total number of pending acceptance intents completed by the reconciler.",
	},
)

// ── Feed metrics ──────────────────────────────────────────────────────────────

// MessagesSentTotal counts messages accepted by the API.
var MessagesSentTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_sent_total",
		Help:      "Total number of messages sent.",
	},
)

// FeedDedupTotal counts deduplication decisions.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new event, processed)
var FeedDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_dedup_total",
		Help:      "Total number of feed deduplication checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// FeedQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index
var FeedQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_queue_depth",
		Help:      "Current number of feed events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// FeedProcessingDuration measures dequeue-to-broadcast latency of one event.
// Label:
//   - outcome: "ok" or "error"
var FeedProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "feed_processing_duration_seconds",
		Help:      "Duration of feed event processing from dequeue to broadcast.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"outcome"},
)

// FeedSubscribers tracks open SSE subscriptions.
var FeedSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_subscribers",
		Help:      "Current number of live feed subscribers.",
	},
)

// FeedReconnectsTotal counts pub/sub listener reconnects.
var FeedReconnectsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_reconnects_total",
		Help:      "Total number of realtime listener reconnect attempts.",
	},
)

// ── Attachment metrics ────────────────────────────────────────────────────────

// UploadsTotal counts upload attempts.
// Label:
//   - result: "ok", "rejected" (policy) or "error"
var UploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Total number of file uploads, by result.",
	},
	[]string{"result"},
)

// UploadBytes observes accepted upload sizes.
var UploadBytes = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upload_bytes",
		Help:      "Size of accepted uploads in bytes.",
		Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
	},
)
