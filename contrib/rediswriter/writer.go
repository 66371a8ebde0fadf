// Package rediswriter adapts a Redis server into a batch.RecordWriter,
// grounded on blueprint/provider/redis.Client as a dead-simple keyed sink:
// each flushed record is stored under a key derived from its header.
package rediswriter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/oddbit-project/batchcore/batch"
	"github.com/oddbit-project/batchcore/provider/redis"
)

// KeyFunc derives the Redis key a record is stored under. The default
// KeyFunc used by NewWriter namespaces by source and sequence number.
type KeyFunc func(r batch.Record) string

// Writer stores each record in a flushed batch as its own Redis key.
type Writer struct {
	config  *redis.Config
	keyFunc KeyFunc

	client *redis.Client
}

func defaultKeyFunc(r batch.Record) string {
	return fmt.Sprintf("%s:%d", r.Header.Source, r.Header.SequenceNumber)
}

// NewWriter builds a Writer against config. A nil keyFunc uses
// "<source>:<sequenceNumber>".
func NewWriter(cfg *redis.Config, keyFunc KeyFunc) *Writer {
	if keyFunc == nil {
		keyFunc = defaultKeyFunc
	}
	return &Writer{config: cfg, keyFunc: keyFunc}
}

func (w *Writer) Open(context.Context) error {
	client, err := redis.NewClient(w.config)
	if err != nil {
		return err
	}
	if err := client.Connect(); err != nil {
		return err
	}
	w.client = client
	return nil
}

func (w *Writer) WriteRecords(ctx context.Context, records []batch.Record) error {
	for _, r := range records {
		payload, err := json.Marshal(r.Payload)
		if err != nil {
			return fmt.Errorf("rediswriter: marshal record %d: %w", r.Header.SequenceNumber, err)
		}
		if err := w.client.Set(w.keyFunc(r), payload); err != nil {
			return fmt.Errorf("rediswriter: set key for record %d: %w", r.Header.SequenceNumber, err)
		}
	}
	return nil
}

func (w *Writer) Close(context.Context) error {
	if w.client != nil {
		return w.client.Close()
	}
	return nil
}
