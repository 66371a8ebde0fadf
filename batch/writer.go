package batch

import "context"

// RecordWriter is the external writer contract of spec.md §4.4.
// WriteRecords is all-or-nothing: a partial write is not an observable
// state to the engine. Close is best-effort.
type RecordWriter interface {
	Open(ctx context.Context) error
	WriteRecords(ctx context.Context, records []Record) error
	Close(ctx context.Context) error
}

// noopWriter is the default writer a freshly-built Job gets.
type noopWriter struct{}

func (noopWriter) Open(context.Context) error { return nil }

func (noopWriter) WriteRecords(context.Context, []Record) error { return nil }

func (noopWriter) Close(context.Context) error { return nil }
