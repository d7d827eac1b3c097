// Package metrics records operational metrics for pipeline runs behind a
// pluggable Backend.
//
// The default backend is a no-op, so every helper is safe to call when no
// metrics system is configured. Concrete backends live in subpackages
// (prompush, datadog) and are installed once at startup with SetBackend.
package metrics

import "time"

// Metric names emitted by the helpers below.
const (
	StageTotal       = "salesetl_stage_total"
	StageDuration    = "salesetl_stage_duration_seconds"
	RowsTotal        = "salesetl_rows_total"
	FindingsTotal    = "salesetl_findings_total"
	PublishedBatches = "salesetl_publish_batches_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStage counts one execution of a pipeline stage and observes its
// duration, labelled with success or failure.
func RecordStage(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"job":    job,
		"stage":  stage,
		"status": status,
	}
	backend.IncCounter(StageTotal, 1, lbls)
	backend.ObserveHistogram(StageDuration, d.Seconds(), lbls)
}

// RecordRows adds the row count of a produced table.
func RecordRows(job, table string, n int) {
	if n <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(n), Labels{
		"job":   job,
		"table": table,
	})
}

// RecordFindings adds data quality findings of the given kind
// ("duplicate_rows" or "null_rows").
func RecordFindings(job, kind string, n int) {
	if n <= 0 {
		return
	}
	backend.IncCounter(FindingsTotal, float64(n), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordBatches increments the count of batches written to the warehouse.
func RecordBatches(job string, n int64) {
	if n <= 0 {
		return
	}
	backend.IncCounter(PublishedBatches, float64(n), Labels{
		"job": job,
	})
}
