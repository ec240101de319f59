// Package metrics defines and registers the custom Prometheus metrics of the
// storefront API. HTTP request metrics come from the echoprometheus
// middleware; this package only holds authentication-specific series.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthRequestsTotal counts auth operations by outcome.
// Labels:
//   - operation: "sign_in", "sign_up", "sign_out" or "refresh_tokens"
//   - result: "success" or "failure"
var AuthRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "requests_total",
		Help:      "Total number of authentication operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// AuthRequestDuration measures handler latency per auth operation.
// Password hashing dominates sign-in and sign-up.
var AuthRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "request_duration_seconds",
		Help:      "Duration of authentication operations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// TokenPairsIssuedTotal counts access/refresh pairs handed to clients.
var TokenPairsIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "token_pairs_issued_total",
		Help:      "Total number of access/refresh token pairs issued.",
	},
)

// ── User metrics ──────────────────────────────────────────────────────────────

// UsersDeletedTotal counts accounts removed through DELETE /users/me.
var UsersDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_deleted_total",
		Help:      "Total number of user accounts deleted by their owner.",
	},
)
