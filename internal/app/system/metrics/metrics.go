// Package metrics defines the Prometheus counters exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clinicdash"

// LoaderFailuresTotal counts failed dashboard loader queries.
// Label:
//   - entity: "doctors", "receptionists", "patients", "appointments", "prescriptions"
var LoaderFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loader_failures_total",
		Help:      "Total number of dashboard loader queries that failed.",
	},
	[]string{"entity"},
)

// MutationsTotal counts dashboard writes.
// Labels:
//   - action: "create_user", "delete_user", "change_role", "save_settings",
//     "update_status", "create_prescription"
//   - result: "ok", "invalid", or "error"
var MutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Total number of dashboard mutations, by action and result.",
	},
	[]string{"action", "result"},
)

// Mutation results.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Mutation records one write attempt.
func Mutation(action, result string) {
	MutationsTotal.WithLabelValues(action, result).Inc()
}

// LoaderFailed records one loader failure.
func LoaderFailed(entity string) {
	LoaderFailuresTotal.WithLabelValues(entity).Inc()
}
