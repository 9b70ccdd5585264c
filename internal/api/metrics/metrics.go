// Package metrics defines the Prometheus metrics of the lunch order service.
// All metrics register with the default registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lunch"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionOutcomesTotal counts orchestration results.
// Labels:
//   - entry: the route that produced the outcome (e.g. "/", "/login")
//   - outcome: proceed, authenticate, expired, duplicate_order, unauthorized, system_error
var SessionOutcomesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_outcomes_total",
		Help:      "Total number of session orchestration outcomes by entry point and kind.",
	},
	[]string{"entry", "outcome"},
)

// CredentialMigrationsTotal counts legacy credentials re-hashed in the background.
var CredentialMigrationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credential_migrations_total",
		Help:      "Total number of legacy plaintext credentials migrated to bcrypt.",
	},
)

// ── Order metrics ─────────────────────────────────────────────────────────────

// OrderSubmissionsTotal counts order submissions.
// Label:
//   - result: accepted, duplicate, closed, error
var OrderSubmissionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_submissions_total",
		Help:      "Total number of order submissions by result.",
	},
	[]string{"result"},
)

// OrdersCanceledTotal counts canceled orders.
var OrdersCanceledTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_canceled_total",
		Help:      "Total number of orders canceled.",
	},
)

// PrincipalsProvisionedTotal counts accounts created through the admin API.
var PrincipalsProvisionedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "principals_provisioned_total",
		Help:      "Total number of accounts provisioned.",
	},
)

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestDuration measures request latency.
// Labels:
//   - method: HTTP method
//   - route: the matched route pattern, not the raw URL
//   - status: response status code
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)
