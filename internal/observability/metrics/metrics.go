// Package metrics provides Prometheus instrumentation for arenakit.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	enabled bool

	contractDeployTotal    *prometheus.CounterVec
	permissionActionTotal  *prometheus.CounterVec
	orchestrationRunsTotal *prometheus.CounterVec
)

// Init initializes the metrics system. All recording functions are no-ops
// until it is called with enabledFlag true.
func Init(enabledFlag bool) {
	enabled = enabledFlag

	if !enabled {
		return
	}

	contractDeployTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arenakit_contract_deploy_total",
			Help: "Contract deployment outcomes by type and status",
		},
		[]string{"type", "status"},
	)

	permissionActionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arenakit_permission_action_total",
			Help: "Permission wiring call outcomes",
		},
		[]string{"status"},
	)

	orchestrationRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arenakit_orchestration_runs_total",
			Help: "Orchestration runs by outcome",
		},
		[]string{"outcome"},
	)
}

// ContractDeploy records one contract deployment outcome.
func ContractDeploy(contractType, status string) {
	if !enabled {
		return
	}
	contractDeployTotal.WithLabelValues(contractType, status).Inc()
}

// PermissionAction records one permission wiring call outcome.
func PermissionAction(status string) {
	if !enabled {
		return
	}
	permissionActionTotal.WithLabelValues(status).Inc()
}

// OrchestrationRun records one orchestration run outcome.
func OrchestrationRun(outcome string) {
	if !enabled {
		return
	}
	orchestrationRunsTotal.WithLabelValues(outcome).Inc()
}

// Handler returns the Prometheus exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr in a background goroutine.
func Serve(addr string) {
	if !enabled {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	go func() {
		_ = http.ListenAndServe(addr, mux)
	}()
}
