// Package sqlitewriter adapts a SQLite database into a batch.RecordWriter,
// grounded on blueprint/provider/sqlite + blueprint/db.Repository. It is
// dependency-light enough for the package's own tests to exercise a real
// sink instead of a fake.
package sqlitewriter

import (
	"context"
	"fmt"

	"github.com/oddbit-project/batchcore/batch"
	"github.com/oddbit-project/batchcore/db"
	"github.com/oddbit-project/batchcore/provider/sqlite"
)

// Writer inserts every record in a flushed batch into a single SQLite
// table via one Repository.Insert call.
type Writer struct {
	config    *sqlite.ClientConfig
	tableName string

	client *db.SqlClient
	repo   db.Repository
}

// NewWriter builds a Writer. dsn follows modernc.org/sqlite's DSN format
// (e.g. "file:data.db?cache=shared" or ":memory:").
func NewWriter(dsn, tableName string) *Writer {
	return &Writer{config: &sqlite.ClientConfig{DSN: dsn}, tableName: tableName}
}

func (w *Writer) Open(ctx context.Context) error {
	client, err := sqlite.NewClient(w.config)
	if err != nil {
		return err
	}
	if err := client.Connect(); err != nil {
		return err
	}
	w.client = client
	w.repo = db.NewRepository(ctx, client, w.tableName)
	return nil
}

func (w *Writer) WriteRecords(_ context.Context, records []batch.Record) error {
	rows := make([]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.Payload)
	}
	if err := w.repo.Insert(rows...); err != nil {
		return fmt.Errorf("sqlitewriter: batch insert into %q: %w", w.tableName, err)
	}
	return nil
}

func (w *Writer) Close(context.Context) error {
	if w.client != nil {
		w.client.Disconnect()
	}
	return nil
}
