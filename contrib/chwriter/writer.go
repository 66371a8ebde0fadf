// Package chwriter adapts a ClickHouse table into a batch.RecordWriter,
// grounded on blueprint/provider/clickhouse.Repository.Insert — a natural
// fit for the accumulator's batch-at-a-time flush.
package chwriter

import (
	"context"
	"fmt"

	"github.com/oddbit-project/batchcore/batch"
	"github.com/oddbit-project/batchcore/provider/clickhouse"
)

// Writer bulk-inserts every record in a flushed batch into a single
// ClickHouse table with one Repository.Insert call.
type Writer struct {
	config    *clickhouse.ClientConfig
	tableName string

	client *clickhouse.Client
	repo   clickhouse.Repository
}

func NewWriter(cfg *clickhouse.ClientConfig, tableName string) *Writer {
	return &Writer{config: cfg, tableName: tableName}
}

func (w *Writer) Open(ctx context.Context) error {
	client, err := clickhouse.NewClient(w.config)
	if err != nil {
		return err
	}
	w.client = client
	w.repo = client.NewRepository(ctx, w.tableName)
	return nil
}

func (w *Writer) WriteRecords(_ context.Context, records []batch.Record) error {
	rows := make([]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.Payload)
	}
	if err := w.repo.Insert(rows...); err != nil {
		return fmt.Errorf("chwriter: bulk insert into %q: %w", w.tableName, err)
	}
	return nil
}

func (w *Writer) Close(context.Context) error {
	if w.client != nil {
		return w.client.Close()
	}
	return nil
}
