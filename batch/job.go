package batch

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/oddbit-project/batchcore/log"
)

// Job is the state machine of spec.md §4.6: open, loop, close, finalize.
// A Job is single-use: once Run has moved it out of STARTING, a second
// call fails with ErrAlreadyUsed (spec.md §4.6 "Single-use").
type Job struct {
	params *Parameters
	report *Report

	reader RecordReader
	writer RecordWriter
	pipe   *Pipeline

	jobListeners     jobListenerChain
	batchListeners   batchListenerChain
	readerListeners  readerListenerChain
	pipelineListener pipelineListenerChain
	writerListeners  writerListenerChain

	logger *log.Logger

	used        atomic.Bool
	stopSignal  atomic.Bool
	stopTimer   *time.Timer
	monitorStop func()
}

// Parameters returns this job's (immutable) configuration.
func (j *Job) Parameters() *Parameters { return j.params }

// Report returns the live/terminal report for this run. Safe to read
// concurrently while the job is executing (Monitor use case, spec.md §4.8).
func (j *Job) Report() *Report { return j.report }

// Stop requests cooperative termination (spec.md §5 "Cancellation and
// timeout"). The runner observes this after each record and after each
// batch flush; in-flight reader/writer calls are not interrupted.
func (j *Job) Stop() {
	j.stopSignal.Store(true)
}

func (j *Job) stopRequested() bool {
	return j.stopSignal.Load()
}

// Run executes the Job's state machine to completion and returns the
// final Report. A Job instance transitions out of STARTING at most once.
func (j *Job) Run(ctx context.Context) (*Report, error) {
	if j.used.Swap(true) {
		return nil, ErrAlreadyUsed
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if j.params.Timeout > 0 {
		j.stopTimer = time.AfterFunc(j.params.Timeout, j.Stop)
		defer j.stopTimer.Stop()
	}

	j.jobListeners.beforeJobStart(ctx, j.params)

	if err := j.openReader(ctx); err != nil {
		j.report.setLastError(err)
		j.report.setStatus(StatusFailed)
		j.finish(ctx)
		return j.report, nil
	}

	if err := j.openWriter(ctx); err != nil {
		j.closeReader(ctx)
		j.report.setLastError(err)
		j.report.setStatus(StatusFailed)
		j.finish(ctx)
		return j.report, nil
	}

	j.report.setStatus(StatusStarted)
	j.report.metrics.markStart()

	j.runLoop(ctx)

	j.closeWriter(ctx)
	j.closeReader(ctx)
	j.finish(ctx)
	return j.report, nil
}

func (j *Job) openReader(ctx context.Context) error {
	err := protect(func() error { return j.reader.Open(ctx) })
	if err != nil {
		return NewStageError(KindOpenReader, "reader open failed", err)
	}
	return nil
}

func (j *Job) openWriter(ctx context.Context) error {
	err := protect(func() error { return j.writer.Open(ctx) })
	if err != nil {
		return NewStageError(KindOpenWriter, "writer open failed", err)
	}
	return nil
}

func (j *Job) closeReader(ctx context.Context) {
	err := protect(func() error { return j.reader.Close(ctx) })
	if err != nil && j.logger != nil {
		j.logger.Warnf("reader close failed: %v", err)
	}
}

func (j *Job) closeWriter(ctx context.Context) {
	err := protect(func() error { return j.writer.Close(ctx) })
	if err != nil && j.logger != nil {
		j.logger.Warnf("writer close failed: %v", err)
	}
}

// runLoop drives records through the pipeline per spec.md §4.6 step 5,
// flushing the accumulator at capacity or end-of-stream.
func (j *Job) runLoop(ctx context.Context) {
	acc := NewAccumulator(j.params.BatchSize)

	for {
		j.batchListeners.beforeBatchReading(ctx)
		j.readerListeners.beforeRecordReading(ctx)

		rec, ok, err := j.readRecord(ctx)
		if err != nil {
			j.readerListeners.onRecordReadingException(ctx, err)
			j.report.setLastError(err)
			j.report.setStatus(StatusStopping)
			j.report.setStatus(StatusFailed)
			return
		}
		if !ok {
			j.flush(ctx, acc)
			if j.report.Status() != StatusFailed && j.report.Status() != StatusAborted {
				j.report.setStatus(StatusStopping)
				j.report.setStatus(StatusCompleted)
			}
			return
		}

		j.report.metrics.incRead()
		j.readerListeners.afterRecordReading(ctx, rec)

		if aborted := j.processRecord(ctx, rec, acc); aborted {
			return
		}

		if j.checkStop(ctx) {
			return
		}
	}
}

func (j *Job) readRecord(ctx context.Context) (rec Record, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewStageError(KindRead, "reader panicked", fmt.Errorf("%v", r))
		}
	}()
	rec, ok, err = j.reader.ReadRecord(ctx)
	if err != nil {
		err = NewStageError(KindRead, "read failed", err)
	}
	return
}

// processRecord runs one record through the pipeline listener + pipeline,
// appends survivors to acc, and flushes acc at capacity. Returns true if
// the job must stop (threshold exceeded).
func (j *Job) processRecord(ctx context.Context, rec Record, acc *Accumulator) (aborted bool) {
	current, err := j.runBeforeRecordProcessing(ctx, rec)
	if err != nil {
		return j.recordProcessingError(ctx, rec, err)
	}
	if current == nil {
		j.report.metrics.incFiltered()
		return false
	}

	result := j.runPipeline(ctx, *current)
	switch result.Outcome {
	case OutcomeError:
		return j.recordProcessingError(ctx, *current, result.Err)
	case OutcomeFiltered:
		j.report.metrics.incFiltered()
		return false
	default: // OutcomeOutput
		j.pipelineListener.afterRecordProcessing(ctx, *current, result.Record)
		ready := acc.Append(result.Record)
		if ready {
			return j.flush(ctx, acc)
		}
		return false
	}
}

func (j *Job) runBeforeRecordProcessing(ctx context.Context, rec Record) (out *Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("pipeline listener panicked: %v", r)
		}
	}()
	return j.pipelineListener.beforeRecordProcessing(ctx, rec)
}

func (j *Job) runPipeline(ctx context.Context, rec Record) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{
				Outcome: OutcomeError,
				Input:   rec,
				Err:     NewStageError(KindProcessing, "stage panicked", fmt.Errorf("%v", r)),
			}
		}
	}()
	return j.pipe.Run(ctx, rec)
}

// recordProcessingError accounts a pipeline/listener failure as a
// ProcessingError (spec.md §7: "ListenerError (pipeline)... counted as
// ProcessingError") and evaluates the threshold. Returns true if the
// threshold was exceeded and the run must abort.
func (j *Job) recordProcessingError(ctx context.Context, input Record, cause error) bool {
	stageErr := NewStageError(KindProcessing, "record processing failed", cause)
	j.report.metrics.addError(1)
	j.report.setLastError(stageErr)
	j.pipelineListener.onRecordProcessingException(ctx, input, stageErr)
	return j.checkThreshold(ctx)
}

// flush hands the accumulated batch to the writer, firing the flush
// boundary listeners exactly once per spec.md §9's recommended answer to
// the afterBatchProcessing Open Question: only at the flush boundary,
// never per-record. Returns true if the threshold was exceeded afterward.
func (j *Job) flush(ctx context.Context, acc *Accumulator) bool {
	records := acc.Drain()
	if len(records) == 0 {
		return false
	}

	j.batchListeners.afterBatchProcessing(ctx, records)
	j.writerListeners.beforeRecordWriting(ctx, records)

	err := j.writeRecords(ctx, records)
	if err != nil {
		writeErr := NewStageError(KindWrite, "batch write failed", err)
		j.report.metrics.addError(uint64(len(records)))
		j.report.setLastError(writeErr)
		j.writerListeners.onRecordWritingException(ctx, records, writeErr)
		j.batchListeners.onBatchWritingException(ctx, records, writeErr)
		return j.checkThreshold(ctx)
	}

	j.report.metrics.addWritten(uint64(len(records)))
	j.writerListeners.afterRecordWriting(ctx, records)
	j.batchListeners.afterBatchWriting(ctx, records)
	return false
}

func (j *Job) writeRecords(ctx context.Context, records []Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("writer panicked: %v", r)
		}
	}()
	return j.writer.WriteRecords(ctx, records)
}

// checkThreshold implements spec.md §4.6 step i / §7 ThresholdExceeded:
// evaluated after every increment of errorCount. Exceeding it ends the
// run immediately with FAILED; anything still queued is discarded.
func (j *Job) checkThreshold(ctx context.Context) bool {
	if int64(j.report.metrics.ErrorCount()) <= j.params.ErrorThreshold {
		return false
	}
	j.report.setLastError(NewStageError(KindThreshold, "error threshold exceeded", nil))
	j.report.setStatus(StatusStopping)
	j.report.setStatus(StatusFailed)
	return true
}

// checkStop implements the cooperative cancellation point of spec.md §5:
// checked after each record and after each batch flush.
func (j *Job) checkStop(ctx context.Context) bool {
	if !j.stopRequested() {
		return false
	}
	j.report.setStatus(StatusStopping)
	j.report.setStatus(StatusAborted)
	return true
}

// finish performs spec.md §4.6 step 7/8: record endTime, ensure a
// terminal status is set, fire afterJobEnd, and deregister the Monitor.
func (j *Job) finish(ctx context.Context) {
	j.report.metrics.markEnd()
	if !j.report.Status().Terminal() {
		j.report.setStatus(StatusCompleted)
	}
	j.jobListeners.afterJobEnd(ctx, j.report)
	if j.monitorStop != nil {
		j.monitorStop()
	}
}

// protect runs fn, converting a panic into an error the same way
// blueprint/threadpool.Worker.Start recovers a panicking Job.Run: the
// core's own state machine is the only place allowed to swallow
// unexpected panics from third-party collaborators (spec.md §9).
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
