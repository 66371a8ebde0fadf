package batch

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oddbit-project/batchcore/types/collections"
)

// Snapshot is the read-only projection of a Job's metrics and status
// exposed to an external management surface (spec.md §4.8). It is safe
// to read at any point during the run: every field comes from an atomic
// load on the underlying Report/Metrics.
type Snapshot struct {
	JobName          string
	ExecutionID      uuid.UUID
	Status           Status
	ReadCount        uint64
	WriteCount       uint64
	FilteredCount    uint64
	ErrorCount       uint64
	StartTime        time.Time
	EndTime          time.Time
	LastErrorMessage string
}

// Monitor is a read-only handle onto a running or finished Job's Report.
// It never mutates the Job; the Job is the only writer (spec.md §9
// "Monitor holds a read-only handle to the Report").
type Monitor struct {
	job *Job
}

// Name is the well-known management name of spec.md §6:
// "<domain>:name=<jobName>,id=<executionId>".
func (m *Monitor) Name(domain string) string {
	return fmt.Sprintf("%s:name=%s,id=%s", domain, m.job.params.Name, m.job.report.ExecutionID())
}

// Read takes a live snapshot of the monitored Job.
func (m *Monitor) Read() Snapshot {
	r := m.job.report
	snap := r.metrics.Snapshot()
	var lastErrMsg string
	if err := r.LastError(); err != nil {
		lastErrMsg = err.Error()
	}
	return Snapshot{
		JobName:          r.parameters.Name,
		ExecutionID:      r.ExecutionID(),
		Status:           r.Status(),
		ReadCount:        snap.ReadCount,
		WriteCount:       snap.WriteCount,
		FilteredCount:    snap.FilteredCount,
		ErrorCount:       snap.ErrorCount,
		StartTime:        snap.StartTime,
		EndTime:          snap.EndTime,
		LastErrorMessage: lastErrMsg,
	}
}

// Registry is the process-wide collaborator spec.md §9 recommends
// "wrapping behind an interface so tests can substitute an in-memory
// registry" for. It is itself in-memory, grounded on
// blueprint/types/collections.Map[K,V].
type Registry struct {
	monitors *collections.Map[string, *Monitor]
}

// DefaultRegistry is the process-wide Registry every jmx-enabled Job
// registers itself with. A test may construct its own *Registry instead
// of relying on this global, per spec.md §9.
var DefaultRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{monitors: collections.NewMap[string, *Monitor]()}
}

// register adds a Monitor for job and returns a deregister function the
// Job calls on its own finish path (spec.md §4.6 step 8). Registration
// failure (none is possible for this in-memory registry, but a remote
// registry's could fail) is logged and never fails the job — there is
// nothing to fail here, so this always succeeds.
func (reg *Registry) register(job *Job) func() {
	mon := &Monitor{job: job}
	key := mon.Name("batchcore")
	reg.monitors.Add(key, mon)
	return func() { reg.monitors.Delete(key) }
}

// Get looks up a registered Monitor by its management name.
func (reg *Registry) Get(name string) (*Monitor, bool) {
	mon, err := reg.monitors.Get(name)
	if err != nil {
		return nil, false
	}
	return mon, true
}

// List returns the management names of every currently registered Monitor.
func (reg *Registry) List() []string {
	return reg.monitors.GetKeys()
}

// Snapshot is a convenience: read every registered job's Snapshot keyed
// by its management name.
func (reg *Registry) Snapshot() map[string]Snapshot {
	out := make(map[string]Snapshot)
	for _, key := range reg.monitors.GetKeys() {
		if mon, ok := reg.Get(key); ok {
			out[key] = mon.Read()
		}
	}
	return out
}
