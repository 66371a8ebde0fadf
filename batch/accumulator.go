package batch

// Accumulator assembles pipeline survivors into a bounded batch for the
// writer, per spec.md §4.3. Unlike blueprint/batchwriter (which flushes
// off a background ticker across goroutines), the Accumulator here is
// driven synchronously by the job runner's own loop — spec.md §5 requires
// single-threaded execution within a job, so there is no concurrent
// writer to double-buffer against.
type Accumulator struct {
	records  []Record
	capacity int
}

// NewAccumulator returns an empty accumulator bounded at capacity (the
// job's BatchSize). capacity must be >= 1; Parameters.Validate enforces
// that upstream.
func NewAccumulator(capacity int) *Accumulator {
	return &Accumulator{
		records:  make([]Record, 0, capacity),
		capacity: capacity,
	}
}

// Append adds a pipeline survivor to the current batch. Ready reports
// whether the batch has reached capacity and should be flushed.
func (a *Accumulator) Append(r Record) (ready bool) {
	a.records = append(a.records, r)
	return len(a.records) >= a.capacity
}

// Len returns the number of records currently buffered.
func (a *Accumulator) Len() int { return len(a.records) }

// Drain returns the buffered records and resets the accumulator to
// empty, ready to receive the next batch. Per spec.md §4.3/§4.6h, a new
// empty batch begins after every write outcome, success or failure.
func (a *Accumulator) Drain() []Record {
	if len(a.records) == 0 {
		return nil
	}
	out := a.records
	a.records = make([]Record, 0, a.capacity)
	return out
}
