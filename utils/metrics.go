package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DeliveriesTotal counts channel delivery attempts by channel and outcome
	// ("ok", "retryable", "permanent", "dead").
	DeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yogatrack_deliveries_total",
		Help: "Reminder channel delivery attempts by channel and outcome.",
	}, []string{"channel", "outcome"})

	// OccurrencesCommitted counts reminder occurrences whose lastSent commit
	// succeeded.
	OccurrencesCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yogatrack_occurrences_committed_total",
		Help: "Reminder occurrences marked handled.",
	})

	// ReconciliationsTotal counts media reconciliation runs by outcome
	// ("promoted", "noop", "failed", "integrity").
	ReconciliationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yogatrack_media_reconciliations_total",
		Help: "Pose image reconciliation runs by outcome.",
	}, []string{"outcome"})
)
