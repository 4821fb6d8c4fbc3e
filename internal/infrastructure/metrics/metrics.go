package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsTotal tracks configuration operations by name and outcome.
	OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfddns_operations_total",
		Help: "Total number of configuration store operations",
	}, []string{"op", "outcome"})

	// ValidationFailures tracks rejected inputs by field and reason.
	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfddns_validation_failures_total",
		Help: "Total number of validation failures",
	}, []string{"field", "reason"})

	// RequestDuration tracks HTTP request processing time.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cfddns_http_request_duration_seconds",
		Help:    "Histogram of HTTP request duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})

	// AccountsConfigured tracks the number of accounts in the store.
	AccountsConfigured = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cfddns_accounts_configured",
		Help: "Number of Cloudflare accounts currently configured",
	})

	// ZonesConfigured tracks the number of zones across all accounts.
	ZonesConfigured = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cfddns_zones_configured",
		Help: "Number of zones currently configured across all accounts",
	})

	// SubdomainsConfigured tracks the number of managed subdomains.
	SubdomainsConfigured = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cfddns_subdomains_configured",
		Help: "Number of subdomains currently managed across all zones",
	})

	// SnapshotPublishes tracks snapshot publications by outcome.
	SnapshotPublishes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfddns_snapshot_publishes_total",
		Help: "Total number of configuration snapshot publications",
	}, []string{"outcome"})
)
