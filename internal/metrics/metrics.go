// Package metrics exports the counts of a pipeline run in the Prometheus
// text format. A run is a one-shot job, so the metrics are written to a
// file for the node exporter textfile collector instead of being scraped.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wordsieve/runtime/internal/errhandling"
	"github.com/wordsieve/runtime/pkg/sieve"
)

const namespace = "wordsieve"

// Recorder holds the metrics of the runs executed by one process.
type Recorder struct {
	registry *prometheus.Registry

	runs            *prometheus.CounterVec
	candidates      *prometheus.CounterVec
	rejected        *prometheus.CounterVec
	oracleQueries   *prometheus.CounterVec
	wordsWritten    *prometheus.CounterVec
	groupsDropped   *prometheus.CounterVec
	duration        *prometheus.GaugeVec
	lastCompletedAt *prometheus.GaugeVec
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	labels := []string{"pipeline_id"}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by status.",
		}, []string{"pipeline_id", "status"}),
		candidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_total",
			Help:      "Corpus candidates, loaded and unique after normalization.",
		}, []string{"pipeline_id", "kind"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_total",
			Help:      "Candidates rejected per stage.",
		}, []string{"pipeline_id", "stage"}),
		oracleQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_queries_total",
			Help:      "Meaning oracle lookups.",
		}, labels),
		wordsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "words_written_total",
			Help:      "Words in written artifacts.",
		}, labels),
		groupsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_dropped_total",
			Help:      "Groups removed by the minimum size threshold.",
		}, labels),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last run.",
		}, labels),
		lastCompletedAt: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Completion time of the last run.",
		}, []string{"pipeline_id", "status"}),
	}
	r.registry.MustRegister(r.runs, r.candidates, r.rejected, r.oracleQueries, r.wordsWritten,
		r.groupsDropped, r.duration, r.lastCompletedAt)
	return r
}

// Observe records the outcome of one run. Nil results are ignored.
func (r *Recorder) Observe(result *sieve.ExecutionResult) {
	if result == nil {
		return
	}
	id := result.PipelineID

	r.runs.WithLabelValues(id, result.Status).Inc()
	r.candidates.WithLabelValues(id, "loaded").Add(float64(result.CandidatesLoaded))
	r.candidates.WithLabelValues(id, "unique").Add(float64(result.CandidatesUnique))
	r.rejected.WithLabelValues(id, "shape").Add(float64(result.ShapeRejected))
	r.rejected.WithLabelValues(id, "meaning").Add(float64(result.MeaningRejected))
	r.oracleQueries.WithLabelValues(id).Add(float64(result.OracleQueries))
	r.wordsWritten.WithLabelValues(id).Add(float64(result.WordsWritten))
	r.groupsDropped.WithLabelValues(id).Add(float64(result.GroupsDropped))

	if !result.CompletedAt.IsZero() {
		r.duration.WithLabelValues(id).Set(result.CompletedAt.Sub(result.StartedAt).Seconds())
		r.lastCompletedAt.WithLabelValues(id, result.Status).Set(float64(result.CompletedAt.Unix()))
	}
}

// WriteToTextfile writes every recorded metric to path. The file is written
// to a temporary name and renamed, so a collector never reads a partial file.
func (r *Recorder) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errhandling.NewIOError(path, "metrics file cannot be written", err)
	}
	return nil
}
