package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests by route, method and status code
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "karmahub_http_requests_total",
			Help: "Total number of http requests handled by the service.",
		},
		[]string{"path", "method", "code"},
	)

	// LifecycleOperationsTotal counts engine operations by outcome (ok or the error kind)
	LifecycleOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "karmahub_lifecycle_operations_total",
			Help: "Total number of job lifecycle operations.",
		},
		[]string{"operation", "outcome"},
	)

	// PartialAcceptancesTotal counts acceptances that stopped after the job was assigned
	PartialAcceptancesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "karmahub_partial_acceptances_total",
			Help: "Total number of acceptances interrupted after assignment, by failed step.",
		},
		[]string{"step"},
	)

	// DegradedReadsTotal counts listings that returned empty because the store failed
	DegradedReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "karmahub_degraded_reads_total",
			Help: "Total number of read views served empty after a store failure.",
		},
		[]string{"view"},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "karmahub_events_published_total",
			Help: "Total number of lifecycle events handed to the dispatcher.",
		},
		[]string{"type", "status"},
	)

	EventsConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "karmahub_events_consumed_total",
			Help: "Total number of lifecycle events processed by the consumer.",
		},
		[]string{"type", "status"},
	)

	SettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "karmahub_settlements_total",
			Help: "Total number of settlement attempts.",
		},
		[]string{"kind", "status"},
	)

	// ReconcilerRunsTotal counts sweeps of stalled acceptances
	ReconcilerRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "karmahub_reconciler_runs_total",
			Help: "Total number of acceptance reconciler sweeps.",
		},
		[]string{"status"},
	)

	// IsLeader is 1 while this node holds the reconciler leadership
	IsLeader = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "karmahub_reconciler_is_leader",
			Help: "Is this node currently the reconciler leader. 1 if leader, 0 otherwise.",
		},
		[]string{"node_id"},
	)
)
