package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests             *prometheus.CounterVec
	CounterObligationsCreated   prometheus.Counter
	CounterObligationsFinal     *prometheus.CounterVec
	CounterLedgerTransitions    *prometheus.CounterVec
	CounterRepsApplied          *prometheus.CounterVec
	CounterMeals                *prometheus.CounterVec
	CounterStorageErrors        *prometheus.CounterVec
	CounterSessionEventsDropped prometheus.Counter
	CounterStaleReads           prometheus.Counter

	// gauges
	GaugeRequests prometheus.Gauge

	// histograms
	HistRequestDuration prometheus.Histogram
	HistSweepDuration   prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("repledger", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("repledger", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming HTTP requests",
	}, []string{"method", "status"})
	counterObligationsCreated := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "obligations_created",
		Help:      "The total number of created obligations",
	})
	counterObligationsFinal := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "obligations_finalized",
		Help:      "Obligations moved to a terminal status",
	}, []string{"status"})
	counterLedgerTransitions := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "ledger_transitions",
		Help:      "Recovery ledger entries created, closed or reset",
	}, []string{"transition"})
	counterRepsApplied := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "reps_applied",
		Help:      "Repetitions credited to obligations or to recovery debt",
	}, []string{"stage"})
	counterMeals := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "meals",
		Help:      "Recorded meal choices",
	}, []string{"choice"})
	counterStorageErrors := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "storage_errors",
		Help:      "Storage failures by operation",
	}, []string{"op"})
	counterSessionEventsDropped := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "session_events_dropped",
		Help:      "Session events that could not be persisted",
	})
	counterStaleReads := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "stale_reads",
		Help:      "Status reads answered from the last-known cache",
	})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})

	histReqDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets: []float64{
				0.00001, 0.0001, 0.0005, 0.001, 0.005,
				0.01, 0.05, 0.1, 0.5, 1, 10,
			},
			Name: "request_duration_seconds",
			Help: "Total duration of requests in seconds",
		},
	)
	histSweepDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets: []float64{
				0.00001, 0.0001, 0.0005, 0.001, 0.005,
				0.01, 0.05, 0.1, 0.5, 1,
			},
			Name: "sweep_duration_seconds",
			Help: "Duration of a single maintenance sweep in seconds",
		},
	)

	return &Manager{
		CounterRequests:             counterRequests,
		CounterObligationsCreated:   counterObligationsCreated,
		CounterObligationsFinal:     counterObligationsFinal,
		CounterLedgerTransitions:    counterLedgerTransitions,
		CounterRepsApplied:          counterRepsApplied,
		CounterMeals:                counterMeals,
		CounterStorageErrors:        counterStorageErrors,
		CounterSessionEventsDropped: counterSessionEventsDropped,
		CounterStaleReads:           counterStaleReads,
		GaugeRequests:               gaugeRequests,
		HistRequestDuration:         histReqDuration,
		HistSweepDuration:           histSweepDuration,
	}
}
