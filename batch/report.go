package batch

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Report is the live-updatable-while-STARTED, frozen-at-terminal-transition
// JobReport of spec.md §3. A *Report is shared between the job runner (the
// only writer) and the Monitor (the only reader) — see spec.md §5.
type Report struct {
	executionID      uuid.UUID
	parameters       *Parameters
	metrics          *Metrics
	status           atomic.Int32
	systemProperties map[string]string

	mu        sync.RWMutex
	lastError error
}

func newReport(params *Parameters) *Report {
	r := &Report{
		executionID:      uuid.New(),
		parameters:       params,
		metrics:          &Metrics{},
		systemProperties: make(map[string]string),
	}
	r.status.Store(int32(StatusStarting))
	return r
}

// ExecutionID is the uuid assigned at Job construction (spec.md GLOSSARY).
func (r *Report) ExecutionID() uuid.UUID { return r.executionID }

// Parameters returns the immutable JobParameters for this run.
func (r *Report) Parameters() *Parameters { return r.parameters }

// Metrics returns the live Metrics handle for this run.
func (r *Report) Metrics() *Metrics { return r.metrics }

// Status returns the current status. Safe to call concurrently with the
// runner's transitions.
func (r *Report) Status() Status {
	return Status(r.status.Load())
}

func (r *Report) setStatus(s Status) {
	r.status.Store(int32(s))
}

// LastError returns the most recently recorded error, or nil.
func (r *Report) LastError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastError
}

func (r *Report) setLastError(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	r.lastError = err
	r.mu.Unlock()
}

// SystemProperty returns a system property recorded on this report.
func (r *Report) SystemProperty(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.systemProperties[key]
	return v, ok
}

// SetSystemProperty records an arbitrary key/value on the report, e.g. for
// collaborators that want to surface extra context (host, shard id, ...).
func (r *Report) SetSystemProperty(key, value string) {
	r.mu.Lock()
	r.systemProperties[key] = value
	r.mu.Unlock()
}

// String renders the report's printable form (spec.md §6): parameters,
// metrics, status, duration, lastError.message.
func (r *Report) String() string {
	snap := r.metrics.Snapshot()
	var duration time.Duration
	if !snap.StartTime.IsZero() {
		end := snap.EndTime
		if end.IsZero() {
			end = time.Now()
		}
		duration = end.Sub(snap.StartTime)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Job %q [%s]\n", r.parameters.Name, r.executionID)
	fmt.Fprintf(&b, "  status:    %s\n", r.Status())
	fmt.Fprintf(&b, "  duration:  %s\n", duration)
	fmt.Fprintf(&b, "  read:      %d\n", snap.ReadCount)
	fmt.Fprintf(&b, "  written:   %d\n", snap.WriteCount)
	fmt.Fprintf(&b, "  filtered:  %d\n", snap.FilteredCount)
	fmt.Fprintf(&b, "  errors:    %d\n", snap.ErrorCount)
	if err := r.LastError(); err != nil {
		fmt.Fprintf(&b, "  lastError: %s\n", err.Error())
	}
	return b.String()
}
