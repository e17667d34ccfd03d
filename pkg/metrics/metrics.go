// Package metrics provides Prometheus metrics for the portal services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StepAdvances tracks advance attempts by wizard, step and outcome
	StepAdvances = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "wizard",
			Name:      "step_advances_total",
			Help:      "Total number of step advance attempts by result",
		},
		[]string{"wizard", "step", "result"},
	)

	// Submissions tracks final submissions by wire encoding and outcome
	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "wizard",
			Name:      "submissions_total",
			Help:      "Total number of final submissions by encoding and result",
		},
		[]string{"wizard", "encoding", "result"},
	)

	// AttachmentsRejected tracks files refused for size
	AttachmentsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "wizard",
			Name:      "attachments_rejected_total",
			Help:      "Total number of attachments rejected by slot",
		},
		[]string{"wizard", "slot"},
	)

	// Autosaves tracks background profile saves
	Autosaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "wizard",
			Name:      "autosaves_total",
			Help:      "Total number of autosave attempts by result",
		},
		[]string{"result"},
	)

	// ActiveSessions tracks wizard sessions held in memory
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "portal",
			Subsystem: "wizard",
			Name:      "active_sessions",
			Help:      "Number of wizard sessions currently open",
		},
	)

	// RecordsStored tracks records persisted by the portal API
	RecordsStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "api",
			Name:      "records_stored_total",
			Help:      "Total number of records persisted by kind and encoding",
		},
		[]string{"kind", "encoding"},
	)
)

// Result maps a boolean outcome to a label value.
func Result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
