// Package metrics defines the Prometheus metrics of the custom-field service.
// It is the single source of truth for metric names, labels and help strings.
//
// Metrics register with the default registry on package init (promauto) and
// are served at GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "customfields"

// ── Schema cache ──────────────────────────────────────────────────────────────

// SchemaCacheRequests counts schema reads.
// Label:
//   - result: "hit" (served from cache), "miss" (fetch started), "shared" (joined an in-flight fetch)
var SchemaCacheRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "schema_cache_requests_total",
		Help:      "Total number of schema reads, labelled by cache result.",
	},
	[]string{"result"},
)

// SchemaFetchTotal counts fetches from the field store.
// Label:
//   - outcome: "success", "error", or "discarded" (an invalidation overtook the fetch)
var SchemaFetchTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "schema_fetch_total",
		Help:      "Total number of schema fetches, by outcome.",
	},
	[]string{"outcome"},
)

// SchemaFetchDuration measures a single schema fetch.
var SchemaFetchDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "schema_fetch_duration_seconds",
		Help:      "Duration of schema fetches from the field store.",
		Buckets:   prometheus.DefBuckets,
	},
)

// SchemaInvalidations counts cache invalidations.
// Label:
//   - origin: "local" (mutation on this replica) or "remote" (received from the bus)
var SchemaInvalidations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "schema_invalidations_total",
		Help:      "Total number of schema cache invalidations, by origin.",
	},
	[]string{"origin"},
)

// ── Fields and values ─────────────────────────────────────────────────────────

// FieldMutations counts definition writes.
// Label:
//   - op: "create", "update" or "delete"
var FieldMutations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "field_mutations_total",
		Help:      "Total number of custom field definition writes.",
	},
	[]string{"op"},
)

// ValidationFailures counts rejected values.
// Label:
//   - field_type: the registry type of the rejected field
var ValidationFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_failures_total",
		Help:      "Total number of custom values rejected by validation, by field type.",
	},
	[]string{"field_type"},
)

// IncompatibleValues reports, per retyped field, how many stored values the
// new type cannot read.
var IncompatibleValues = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "incompatible_values",
		Help:      "Stored values that no longer coerce to their field's current type.",
	},
	[]string{"field_key"},
)

// CompatQueueDepth tracks pending compatibility scans per worker.
var CompatQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "compat_queue_depth",
		Help:      "Current number of compatibility scans pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// ── Policy ────────────────────────────────────────────────────────────────────

// PolicyDenials counts requests refused by the role/action matrix.
var PolicyDenials = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "policy_denials_total",
		Help:      "Total number of requests denied by the access policy.",
	},
	[]string{"action", "resource"},
)
