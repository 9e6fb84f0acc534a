package utils

import "github.com/prometheus/client_golang/prometheus"

var (
	MetricSyncQueueLength = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "form_designer",
		Name:      "sync_queue_length",
		Help:      "Number of writes waiting in the offline queue",
	})

	MetricRemoteWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "form_designer",
		Name:      "remote_writes_total",
		Help:      "Remote store writes, by action type and outcome",
	}, []string{"action", "outcome"})

	MetricDraftsPersisted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "form_designer",
		Name:      "drafts_persisted_total",
		Help:      "Draft snapshots written to the local store, by outcome",
	}, []string{"outcome"})

	MetricOpenSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "form_designer",
		Name:      "open_sessions",
		Help:      "Designer sessions held in memory",
	})
)

func RegisterMetrics(registerer prometheus.Registerer) {
	registerer.MustRegister(
		MetricSyncQueueLength,
		MetricRemoteWrites,
		MetricDraftsPersisted,
		MetricOpenSessions,
	)
}
