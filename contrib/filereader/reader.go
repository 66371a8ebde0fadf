// Package filereader adapts a newline-delimited JSON file into a
// batch.RecordReader, grounded on config/provider.JsonProvider's
// os.Open/io.Reader handling and bufio-based line scanning.
package filereader

import (
	"bufio"
	"context"
	"encoding/json"
	"os"

	"github.com/oddbit-project/batchcore/batch"
)

// Reader reads one JSON object per line from Path, decoding each line
// into a map[string]interface{} payload.
type Reader struct {
	Path   string
	Source string

	file    *os.File
	scanner *bufio.Scanner
	seq     uint64
}

// NewReader builds a Reader over the file at path. source tags every
// produced Record's Header.Source.
func NewReader(path, source string) *Reader {
	return &Reader{Path: path, Source: source}
}

func (r *Reader) Open(context.Context) error {
	f, err := os.Open(r.Path)
	if err != nil {
		return err
	}
	r.file = f
	r.scanner = bufio.NewScanner(f)
	r.scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return nil
}

func (r *Reader) ReadRecord(context.Context) (batch.Record, bool, error) {
	for r.scanner.Scan() {
		line := r.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var payload map[string]interface{}
		if err := json.Unmarshal(line, &payload); err != nil {
			return batch.Record{}, false, err
		}
		r.seq++
		return batch.NewRecord(r.seq, r.Source, payload), true, nil
	}
	if err := r.scanner.Err(); err != nil {
		return batch.Record{}, false, err
	}
	return batch.Record{}, false, nil
}

func (r *Reader) Close(context.Context) error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}
