// Package filewriter adapts a newline-delimited JSON file into a
// batch.RecordWriter, the output-side counterpart of
// contrib/filereader.
package filewriter

import (
	"context"
	"encoding/json"
	"os"

	"github.com/oddbit-project/batchcore/batch"
	"github.com/oddbit-project/batchcore/utils"
)

const ErrNotOpen = utils.Error("filewriter: writer not open")

// Writer appends every flushed record's Payload as one JSON line to Path.
type Writer struct {
	Path string

	file *os.File
}

func NewWriter(path string) *Writer {
	return &Writer{Path: path}
}

func (w *Writer) Open(context.Context) error {
	f, err := os.OpenFile(w.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	w.file = f
	return nil
}

func (w *Writer) WriteRecords(_ context.Context, records []batch.Record) error {
	if w.file == nil {
		return ErrNotOpen
	}
	enc := json.NewEncoder(w.file)
	for _, r := range records {
		if err := enc.Encode(r.Payload); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) Close(context.Context) error {
	if w.file == nil {
		return nil
	}
	return w.file.Close()
}
