package core

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

var expvarSeq uint64

// OperationStats aggregates outcomes for one registry operation.
type OperationStats struct {
	Success int64   `json:"success"`
	Error   int64   `json:"error"`
	TotalMS float64 `json:"total_ms"`
	MeanMS  float64 `json:"mean_ms"`
}

// ExpvarMetricsSnapshot is the value published under the recorder's expvar
// name, keyed by operation.
type ExpvarMetricsSnapshot struct {
	Operations map[string]OperationStats `json:"operations"`
	RecordedAt time.Time                 `json:"recorded_at"`
}

// ExpvarMetricsRecorder fulfills MetricsRecorder for deployments that scrape
// /debug/vars style endpoints instead of Prometheus. It keeps per-operation
// success and error counts together with accumulated latency.
type ExpvarMetricsRecorder struct {
	name string

	mu  sync.Mutex
	ops map[string]*opTotals
}

type opTotals struct {
	success int64
	failure int64
	elapsed time.Duration
}

// NewExpvarMetricsRecorder constructs an expvar-backed recorder and publishes
// it under the supplied name. When name is empty, a unique one is generated;
// expvar panics on duplicate publishes, so generated names carry a sequence.
func NewExpvarMetricsRecorder(name string) *ExpvarMetricsRecorder {
	if name == "" {
		name = fmt.Sprintf("fleet_registry_metrics_%d", atomic.AddUint64(&expvarSeq, 1))
	}
	rec := &ExpvarMetricsRecorder{
		name: name,
		ops:  make(map[string]*opTotals),
	}
	expvar.Publish(name, expvar.Func(func() any {
		return rec.Snapshot()
	}))
	return rec
}

// Name returns the expvar export name associated with the recorder.
func (r *ExpvarMetricsRecorder) Name() string { return r.name }

// Observe records a registry operation outcome.
func (r *ExpvarMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	r.mu.Lock()
	totals, ok := r.ops[operation]
	if !ok {
		totals = &opTotals{}
		r.ops[operation] = totals
	}
	if success {
		totals.success++
	} else {
		totals.failure++
	}
	totals.elapsed += duration
	r.mu.Unlock()
}

// Snapshot returns an immutable copy of the aggregated metrics.
func (r *ExpvarMetricsRecorder) Snapshot() ExpvarMetricsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	ops := make(map[string]OperationStats, len(r.ops))
	for name, totals := range r.ops {
		stats := OperationStats{
			Success: totals.success,
			Error:   totals.failure,
			TotalMS: float64(totals.elapsed) / float64(time.Millisecond),
		}
		if n := totals.success + totals.failure; n > 0 {
			stats.MeanMS = stats.TotalMS / float64(n)
		}
		ops[name] = stats
	}
	return ExpvarMetricsSnapshot{Operations: ops, RecordedAt: time.Now().UTC()}
}

// traceRetention bounds how many finished spans a TraceLog keeps in memory
// for inspection; the JSON line output is unbounded.
const traceRetention = 256

// TraceEntry is one finished span as written to the trace log.
type TraceEntry struct {
	Time       time.Time `json:"ts"`
	Operation  string    `json:"operation"`
	DurationMS float64   `json:"elapsed_ms"`
	OK         bool      `json:"ok"`
	Error      string    `json:"error,omitempty"`
}

// TraceLog implements Tracer by appending one JSON line per finished span to
// a writer, typically a file configured via trace_log. Recent entries are
// retained in memory for inspection.
type TraceLog struct {
	mu      sync.Mutex
	recent  []TraceEntry
	encoder *json.Encoder
}

// NewTraceLog returns a tracer writing JSON lines to w. A nil writer retains
// spans in memory only.
func NewTraceLog(w io.Writer) *TraceLog {
	t := &TraceLog{}
	if w != nil {
		t.encoder = json.NewEncoder(w)
	}
	return t
}

// Entries returns a copy of the retained spans, oldest first.
func (t *TraceLog) Entries() []TraceEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TraceEntry, len(t.recent))
	copy(out, t.recent)
	return out
}

// Start implements the Tracer interface.
func (t *TraceLog) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	return ctx, &traceLogSpan{log: t, operation: operation, started: time.Now().UTC()}
}

type traceLogSpan struct {
	log       *TraceLog
	operation string
	started   time.Time
}

func (s *traceLogSpan) End(err error) {
	ended := time.Now().UTC()
	entry := TraceEntry{
		Time:       ended,
		Operation:  s.operation,
		DurationMS: float64(ended.Sub(s.started)) / float64(time.Millisecond),
		OK:         err == nil,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	s.log.mu.Lock()
	s.log.recent = append(s.log.recent, entry)
	if len(s.log.recent) > traceRetention {
		s.log.recent = s.log.recent[len(s.log.recent)-traceRetention:]
	}
	if s.log.encoder != nil {
		_ = s.log.encoder.Encode(entry)
	}
	s.log.mu.Unlock()
}
