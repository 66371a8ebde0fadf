// Package pgwriter adapts a PostgreSQL table into a batch.RecordWriter,
// grounded on blueprint/db.Repository (doug-martin/goqu insert building)
// over a blueprint/provider/pgsql connection.
package pgwriter

import (
	"context"
	"fmt"

	"github.com/oddbit-project/batchcore/batch"
	"github.com/oddbit-project/batchcore/db"
	"github.com/oddbit-project/batchcore/provider/pgsql"
)

// Writer inserts every record in a flushed batch into a single table via
// one Repository.Insert call, letting goqu build the multi-row INSERT.
// Payload must be a struct or map goqu's row mapper understands.
type Writer struct {
	dsn       string
	tableName string

	client *db.SqlClient
	repo   db.Repository
}

// NewWriter builds a Writer. dsn is a standard postgres connection
// string; tableName is the destination table.
func NewWriter(dsn, tableName string) *Writer {
	return &Writer{dsn: dsn, tableName: tableName}
}

func (w *Writer) Open(ctx context.Context) error {
	client, err := pgsql.NewClient(&pgsql.ClientConfig{DSN: w.dsn})
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
		return fmt.Errorf("pgwriter: batch insert into %q: %w", w.tableName, err)
	}
	return nil
}

func (w *Writer) Close(context.Context) error {
	if w.client != nil {
		w.client.Disconnect()
	}
	return nil
}
