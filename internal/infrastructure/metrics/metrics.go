package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	AccountsCreated      prometheus.Counter
	JournalEntriesPosted prometheus.Counter
	JournalLinesPosted   prometheus.Counter
	InvariantViolations  *prometheus.CounterVec

	// Wallet metrics
	WalletOperations *prometheus.CounterVec

	// Movement metrics
	MovementsInitiated *prometheus.CounterVec
	MovementsSettled   *prometheus.CounterVec
	MovementsRefunded  *prometheus.CounterVec
	MovementAmount     *prometheus.HistogramVec
	SettlementDuration prometheus.Histogram

	// Callback metrics
	CallbacksReceived   *prometheus.CounterVec
	DuplicateCallbacks  *prometheus.CounterVec
	SignatureFailures   *prometheus.CounterVec
	RailRequestDuration *prometheus.HistogramVec
	RailErrors          *prometheus.CounterVec

	// Fee metrics
	FeeComputations *prometheus.CounterVec
	FeeConfigMisses *prometheus.CounterVec

	// Worker metrics
	SweepResults     *prometheus.CounterVec
	OutboxDispatched *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers all metrics on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		AccountsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "walletcore_accounts_created_total",
			Help: "Total number of ledger accounts created",
		}),
		JournalEntriesPosted: f.NewCounter(prometheus.CounterOpts{
			Name: "walletcore_journal_entries_posted_total",
			Help: "Total number of journal entries posted",
		}),
		JournalLinesPosted: f.NewCounter(prometheus.CounterOpts{
			Name: "walletcore_journal_lines_posted_total",
			Help: "Total number of journal lines posted",
		}),
		InvariantViolations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletcore_invariant_violations_total",
				Help: "Invariant violations detected; every increment pages",
			},
			[]string{"operation"},
		),
		WalletOperations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletcore_wallet_operations_total",
				Help: "Wallet debits and credits",
			},
			[]string{"operation", "status"},
		),
		MovementsInitiated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletcore_movements_initiated_total",
				Help: "Money movements initiated",
			},
			[]string{"rail"},
		),
		MovementsSettled: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletcore_movements_settled_total",
				Help: "Money movements that reached a terminal status",
			},
			[]string{"rail", "status"},
		),
		MovementsRefunded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletcore_movements_refunded_total",
				Help: "Money movements compensated with a refund",
			},
			[]string{"rail", "kind"},
		),
		MovementAmount: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletcore_movement_amount_rand",
				Help:    "Movement principal amounts in rand",
				Buckets: []float64{10, 50, 100, 500, 1000, 5000, 25000, 100000},
			},
			[]string{"rail"},
		),
		SettlementDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "walletcore_settlement_duration_seconds",
			Help:    "Duration of settlement transitions",
			Buckets: prometheus.DefBuckets,
		}),
		CallbacksReceived: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletcore_callbacks_received_total",
				Help: "Rail callbacks received",
			},
			[]string{"rail"},
		),
		DuplicateCallbacks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletcore_duplicate_callbacks_total",
				Help: "Outcomes that arrived for an already terminal movement",
			},
			[]string{"rail"},
		),
		SignatureFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletcore_callback_signature_failures_total",
				Help: "Callbacks rejected by signature verification",
			},
			[]string{"rail"},
		),
		RailRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletcore_rail_request_duration_seconds",
				Help:    "Duration of outbound rail requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"rail", "operation"},
		),
		RailErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletcore_rail_errors_total",
				Help: "Outbound rail request failures",
			},
			[]string{"rail", "operation"},
		),
		FeeComputations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletcore_fee_computations_total",
				Help: "Fee breakdowns computed",
			},
			[]string{"supplier", "service", "tier"},
		),
		FeeConfigMisses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletcore_fee_config_misses_total",
				Help: "Fee lookups with no active configuration",
			},
			[]string{"supplier", "service", "tier"},
		),
		SweepResults: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletcore_sweep_results_total",
				Help: "Records processed by background sweeps",
			},
			[]string{"sweep", "result"},
		),
		OutboxDispatched: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletcore_outbox_dispatched_total",
				Help: "Outbox events handled by the relay",
			},
			[]string{"event_type", "result"},
		),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletcore_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletcore_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "walletcore_http_in_flight_requests",
			Help: "HTTP requests currently being served",
		}),
		RedisOperations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletcore_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletcore_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),
		RateLimitHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletcore_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"route"},
		),
		AuditLogsCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletcore_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "status"},
		),
	}
}
