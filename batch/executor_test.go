package batch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExecutorExecuteReturnsReport(t *testing.T) {
	executor, err := NewExecutor(2, 4)
	require.NoError(t, err)
	require.NoError(t, executor.Start(context.Background()))
	defer executor.Stop()

	reader := &sliceReader{records: []Record{NewRecord(1, "s", "a")}}
	writer := &recordingWriter{}
	job, err := NewBuilder().BatchSize(1).Reader(reader).Writer(writer).Build()
	require.NoError(t, err)

	report, err := executor.Execute(context.Background(), job)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, report.Status())
}

func TestExecutorExecuteAsyncMultipleJobs(t *testing.T) {
	executor, err := NewExecutor(4, 8)
	require.NoError(t, err)
	require.NoError(t, executor.Start(context.Background()))
	defer executor.Stop()

	var futures []*Future
	for i := 0; i < 5; i++ {
		reader := &sliceReader{records: []Record{NewRecord(uint64(i), "s", i)}}
		writer := &recordingWriter{}
		job, err := NewBuilder().BatchSize(1).Reader(reader).Writer(writer).Build()
		require.NoError(t, err)
		futures = append(futures, executor.ExecuteAsync(context.Background(), job))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, f := range futures {
		report, err := f.Wait(ctx)
		require.NoError(t, err)
		require.Equal(t, StatusCompleted, report.Status())
	}
}

func TestFutureWaitRespectsContextCancellation(t *testing.T) {
	f := &Future{done: make(chan *Report, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
