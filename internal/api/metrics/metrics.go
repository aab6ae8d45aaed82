// Package metrics defines and registers all custom Prometheus metrics for the
// client contracts API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on import and
// served by the /metrics route next to the echoprometheus HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clientledger"

// ── Client metrics ────────────────────────────────────────────────────────────

// ClientsCreatedTotal counts newly created clients.
// Label:
//   - variant: "PERSON" or "COMPANY"
var ClientsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clients_created_total",
		Help:      "Total number of clients created, by variant.",
	},
	[]string{"variant"},
)

// ClientsDeletedTotal counts soft-deleted clients.
var ClientsDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clients_deleted_total",
		Help:      "Total number of clients soft-deleted.",
	},
)

// ── Contract metrics ──────────────────────────────────────────────────────────

var ContractsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contracts_created_total",
		Help:      "Total number of contracts created.",
	},
)

// ContractsClosedTotal counts contracts closed by client deletion.
var ContractsClosedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contracts_closed_total",
		Help:      "Total number of contracts closed when their client was deleted.",
	},
)

// ActiveCostSumDuration measures the active cost sum query.
var ActiveCostSumDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "active_cost_sum_duration_seconds",
		Help:      "Duration of the active contract cost sum.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)

// ── Idempotency metrics ───────────────────────────────────────────────────────

// IdempotentReplaysTotal counts creates answered from an earlier result.
// Label:
//   - resource: "client" or "contract"
var IdempotentReplaysTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotent_replays_total",
		Help:      "Total number of create requests replayed via Idempotency-Key.",
	},
	[]string{"resource"},
)
