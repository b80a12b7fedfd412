package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PruneMetrics holds per-backup gauges describing the last prune run.
// The tool is a oneshot, so gauges are exported to a textfile for the
// node-exporter textfile collector rather than scraped.
type PruneMetrics struct {
	// ListedObjects is the total number of keys listed under the backup scope.
	// Labels: backup
	ListedObjects *prometheus.GaugeVec

	// KeptIndexes is the number of index snapshots retained by policy.
	// Labels: backup
	KeptIndexes *prometheus.GaugeVec

	// KeptDataKeys is the number of data keys referenced by retained indexes.
	// Labels: backup
	KeptDataKeys *prometheus.GaugeVec

	// DeleteCandidates is the size of the computed delete set.
	// Labels: backup
	DeleteCandidates *prometheus.GaugeVec

	// DeletedObjects is the number of keys the store confirmed deleted.
	// Labels: backup
	DeletedObjects *prometheus.GaugeVec

	// LastRunTimestamp is the unix time of the last completed run.
	// Labels: backup
	LastRunTimestamp *prometheus.GaugeVec

	// LastRunSuccess is 1 when the last run completed without a fatal
	// error, 0 otherwise. A deferred delete failure still counts as success.
	// Labels: backup
	LastRunSuccess *prometheus.GaugeVec

	registry *prometheus.Registry
}

// RunReport is the subset of a prune result the metrics layer records.
type RunReport struct {
	Listed     int
	KeptIdx    int
	KeptData   int
	Candidates int
	Deleted    int
	Success    bool
}

func NewPruneMetrics() *PruneMetrics {
	return NewPruneMetricsWithRegistry(prometheus.NewRegistry())
}

// NewPruneMetricsWithRegistry registers the metrics with the given registry.
// Used by tests to gather without global state.
func NewPruneMetricsWithRegistry(reg *prometheus.Registry) *PruneMetrics {
	factory := promauto.With(reg)
	labels := []string{"backup"}
	return &PruneMetrics{
		ListedObjects: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "snapsweep",
			Subsystem: "prune",
			Name:      "listed_objects",
			Help:      "Total keys listed under the backup scope.",
		}, labels),
		KeptIndexes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "snapsweep",
			Subsystem: "prune",
			Name:      "kept_indexes",
			Help:      "Index snapshots retained by policy.",
		}, labels),
		KeptDataKeys: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "snapsweep",
			Subsystem: "prune",
			Name:      "kept_data_keys",
			Help:      "Data keys referenced by retained indexes.",
		}, labels),
		DeleteCandidates: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "snapsweep",
			Subsystem: "prune",
			Name:      "delete_candidates",
			Help:      "Size of the computed delete set.",
		}, labels),
		DeletedObjects: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "snapsweep",
			Subsystem: "prune",
			Name:      "deleted_objects",
			Help:      "Keys the store confirmed deleted.",
		}, labels),
		LastRunTimestamp: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "snapsweep",
			Subsystem: "prune",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed run.",
		}, labels),
		LastRunSuccess: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "snapsweep",
			Subsystem: "prune",
			Name:      "last_run_success",
			Help:      "1 when the last run completed without a fatal error.",
		}, labels),
		registry: reg,
	}
}

func (m *PruneMetrics) Record(backup string, report RunReport, at time.Time) {
	m.ListedObjects.WithLabelValues(backup).Set(float64(report.Listed))
	m.KeptIndexes.WithLabelValues(backup).Set(float64(report.KeptIdx))
	m.KeptDataKeys.WithLabelValues(backup).Set(float64(report.KeptData))
	m.DeleteCandidates.WithLabelValues(backup).Set(float64(report.Candidates))
	m.DeletedObjects.WithLabelValues(backup).Set(float64(report.Deleted))
	m.LastRunTimestamp.WithLabelValues(backup).Set(float64(at.Unix()))
	success := 0.0
	if report.Success {
		success = 1.0
	}
	m.LastRunSuccess.WithLabelValues(backup).Set(success)
}

// WriteFile exports the current state in the Prometheus text format.
func (m *PruneMetrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *PruneMetrics) Registry() *prometheus.Registry {
	return m.registry
}
