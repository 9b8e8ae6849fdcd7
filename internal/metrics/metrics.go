// Package metrics records operational counters and timings for the
// nutrition tools behind a pluggable Backend.
//
// The default backend is a no-op, so instrumented code never needs to check
// whether metrics are configured. Concrete systems live in subpackages
// (see prompush) and are installed once at startup with SetBackend.
//
// Metric names:
//
//	nutrition_step_total              counter   job, step, status
//	nutrition_step_duration_seconds   summary   job, step, status
//	nutrition_rows_total              counter   job, kind
//	nutrition_batches_total           counter   job
//	nutrition_requests_total          counter   job, endpoint, status
package metrics

import (
	"strconv"
	"time"
)

// Metric names shared with backends.
const (
	StepTotal    = "nutrition_step_total"
	StepDuration = "nutrition_step_duration_seconds"
	RowsTotal    = "nutrition_rows_total"
	BatchesTotal = "nutrition_batches_total"
	RequestTotal = "nutrition_requests_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a duration-style observation.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

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

// RecordStep counts one execution of a tool step and records its latency.
// Steps are coarse: "format", "aggregate", "split", "write".
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}
	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRow adds delta to the row counter for kind. Kinds mirror the tool
// summaries: read, written, skipped, malformed, duplicate, query_ok,
// query_failed, statement, chunk.
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{"job": job, "kind": kind})
}

// RecordBatches counts flushed INSERT statements.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(BatchesTotal, float64(delta), Labels{"job": job})
}

// RecordRequest counts one outbound HTTP attempt. code is the response status,
// or 0 when the request failed before a response arrived.
func RecordRequest(job, endpoint string, code int) {
	status := "error"
	if code > 0 {
		status = strconv.Itoa(code)
	}
	backend.IncCounter(RequestTotal, 1, Labels{"job": job, "endpoint": endpoint, "status": status})
}
