package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "walletledger"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Wallet metrics
	WalletsCreated      prometheus.Counter
	WalletStatusChanges *prometheus.CounterVec

	// Ledger metrics
	Mutations        *prometheus.CounterVec
	MutationAmount   *prometheus.HistogramVec
	DuplicateReplays *prometheus.CounterVec
	VersionConflicts *prometheus.CounterVec
	OperationErrors  *prometheus.CounterVec
	OperationLatency *prometheus.HistogramVec

	// Hold metrics
	HoldsPlaced   prometheus.Counter
	HoldsReleased prometheus.Counter
	HoldsCaptured prometheus.Counter

	// Transfer metrics
	TransfersCompleted prometheus.Counter

	// Reconciliation metrics
	ReconciliationRuns   prometheus.Counter
	ReconciliationDrifts prometheus.Counter

	// Tenant isolation
	TenantViolations *prometheus.CounterVec

	// Outbox
	EventsPublished   prometheus.Counter
	EventPublishFails prometheus.Counter

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests         *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		WalletsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wallets_created_total",
			Help:      "Total number of wallets created",
		}),
		WalletStatusChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wallet_status_changes_total",
			Help:      "Wallet status transitions by target status",
		}, []string{"status"}),

		Mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "mutations_total",
			Help:      "Committed balance mutations by direction and entry type",
		}, []string{"direction", "entry_type"}),
		MutationAmount: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "mutation_amount_minor_units",
			Help:      "Mutation amounts in minor units",
			Buckets:   []float64{100, 1000, 10000, 100000, 1000000, 10000000},
		}, []string{"direction"}),
		DuplicateReplays: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "idempotent_replays_total",
			Help:      "Requests answered from an existing idempotency record",
		}, []string{"operation"}),
		VersionConflicts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "version_conflicts_total",
			Help:      "Optimistic version conflicts that triggered a retry",
		}, []string{"operation"}),
		OperationErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "operation_errors_total",
			Help:      "Failed engine operations by error kind",
		}, []string{"operation", "kind"}),
		OperationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "operation_duration_seconds",
			Help:      "Duration of engine operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		HoldsPlaced: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "holds",
			Name:      "placed_total",
			Help:      "Total number of holds placed",
		}),
		HoldsReleased: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "holds",
			Name:      "released_total",
			Help:      "Total number of holds released",
		}),
		HoldsCaptured: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "holds",
			Name:      "captured_total",
			Help:      "Total number of holds captured",
		}),

		TransfersCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_completed_total",
			Help:      "Total number of transfers committed",
		}),

		ReconciliationRuns: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciliation",
			Name:      "runs_total",
			Help:      "Wallet recalculations performed",
		}),
		ReconciliationDrifts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciliation",
			Name:      "drifts_total",
			Help:      "Recalculations that found a discrepancy",
		}),

		TenantViolations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tenant_violations_total",
			Help:      "Operations rejected because a wallet belongs to another tenant",
		}, []string{"operation"}),

		EventsPublished: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "events_published_total",
			Help:      "Outbox events published",
		}),
		EventPublishFails: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "publish_failures_total",
			Help:      "Outbox events that failed to publish",
		}),

		RateLimitHits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Total rate limit hits",
		}, []string{"tenant"}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "path"}),
		HTTPRequestsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),
	}
}
