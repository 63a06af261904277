package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by flow (admin_login|consumer_login|verify_otp) and result.
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcentre_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"flow", "result"},
	)

	// PermissionChecks counts authorization gate evaluations and their outcome (allow|deny|error).
	PermissionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcentre_permission_checks_total",
			Help: "Total number of permission checks",
		},
		[]string{"permission", "result"},
	)

	// OTPIssued counts one-time codes and reset tokens by purpose and delivery result.
	OTPIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcentre_otp_issued_total",
			Help: "Total number of one-time codes issued",
		},
		[]string{"purpose", "result"},
	)

	// MaintenanceCleared counts expired credentials cleared by the maintenance job.
	MaintenanceCleared = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcentre_maintenance_cleared_total",
			Help: "Expired one-time credentials cleared by maintenance",
		},
		[]string{"kind"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitcentre_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
